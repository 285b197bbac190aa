// Package logger hands out a plain *log.Logger backed by Cloud Logging for
// data-access code that does not carry structured attributes.
package logger

import (
	"context"
	"log"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/logging"
)

const logName = "community"

func FromContext(ctx context.Context) *log.Logger {
	projectID, err := metadata.ProjectIDWithContext(ctx)
	if err != nil {
		log.Fatalf("failed to get project ID: %v", err)
	}
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("failed to create logging client: %v", err)
	}
	return client.Logger(logName).StandardLogger(logging.Info)
}
