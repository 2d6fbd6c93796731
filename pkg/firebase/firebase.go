package firebase

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and the clients the triggers use.
type App struct {
	FirebaseApp *firebase.App
	Firestore   *firestore.Client
	Messaging   *messaging.Client
	Bucket      *storage.BucketHandle
}

// InitFirebase initializes the Firebase application along with the Firestore,
// Cloud Messaging and Storage clients. An empty bucket name falls back to
// the bucket configured in the credentials project.
func InitFirebase(ctx context.Context, credentialsPath, bucketName string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	conf := &firebase.Config{StorageBucket: bucketName}
	firebaseApp, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	fsClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	msgClient, err := firebaseApp.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	storageClient, err := firebaseApp.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting storage client: %w", err)
	}
	var bucket *storage.BucketHandle
	if bucketName != "" {
		bucket, err = storageClient.Bucket(bucketName)
	} else {
		bucket, err = storageClient.DefaultBucket()
	}
	if err != nil {
		return nil, fmt.Errorf("error getting storage bucket: %w", err)
	}

	return &App{
		FirebaseApp: firebaseApp,
		Firestore:   fsClient,
		Messaging:   msgClient,
		Bucket:      bucket,
	}, nil
}

// Close releases the Firestore client connection.
func (a *App) Close() error {
	return a.Firestore.Close()
}
