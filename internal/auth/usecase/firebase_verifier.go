package usecase

import (
	"context"
	"fmt"
	"log"

	"pushcast-backend/internal/auth/domain"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// FirebaseVerifier checks Firebase ID tokens issued to dashboard users.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, app *firebase.App) (*FirebaseVerifier, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*domain.Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		log.Printf("[Auth] ID token rejected: %v", err)
		return nil, ErrInvalidToken
	}

	email, _ := token.Claims["email"].(string)
	return &domain.Identity{UserID: token.UID, Email: email}, nil
}
