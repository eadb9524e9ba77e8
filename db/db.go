package db

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

const (
	reportsCollection  = "reports"
	clustersCollection = "clusters"
)

var ErrNotFound = errors.New("document not found")

// HashString hashes a given string using SHA-256 and returns its hex representation.
func HashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// singleton Firestore client
var (
	client     *firestore.Client
	clientErr  error
	clientOnce sync.Once
)

// InitFirestore initializes the Firestore client from base64 encoded service
// account credentials. Later calls return the same client.
func InitFirestore(ctx context.Context, encodedCreds string) (*firestore.Client, error) {
	clientOnce.Do(func() {
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			clientErr = fmt.Errorf("failed to decode Firestore credentials: %w", err)
			return
		}

		app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(creds))
		if err != nil {
			clientErr = fmt.Errorf("error initializing Firebase app: %w", err)
			return
		}

		client, err = app.Firestore(ctx)
		if err != nil {
			clientErr = fmt.Errorf("error getting Firestore client: %w", err)
			return
		}
		log.Println("Firestore client initialized")
	})

	return client, clientErr
}

// CloseFirestore closes the Firestore client.
func CloseFirestore() {
	if client != nil {
		client.Close()
	}
}
