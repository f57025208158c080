// utils/firebase.go
package utils

import (
	"context"
	"errors"
	"fmt"

	"easybook/config"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// ErrFirebaseDisabled is returned when no service account is configured.
var ErrFirebaseDisabled = errors.New("firebase: no credentials configured")

// FirebaseInit initializes the Firebase App from the configured service account file.
func FirebaseInit(ctx context.Context) (*firebase.App, error) {
	path := config.AppConfig.FirebaseCredentials
	if path == "" {
		return nil, ErrFirebaseDisabled
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(path))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	return app, nil
}
