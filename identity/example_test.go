package identity_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/recipeguard/identity"
)

func ExampleResolver_Resolve() {
	sessions, _ := identity.NewSessionVerifier(identity.SessionConfig{Secret: []byte("example-secret-example-secret-32b")})
	token, _ := sessions.Issue("cook-7", time.Hour)

	r := &identity.Resolver{Sessions: sessions}
	_, signedIn, _ := r.Resolve(context.Background(), identity.Credentials{SessionToken: token})
	_, device, _ := r.Resolve(context.Background(), identity.Credentials{DeviceID: "tablet"})

	fmt.Println(signedIn, signedIn.Method())
	fmt.Println(device, device.Method())
	// Output:
	// session:cook-7 session
	// device:tablet device
}
