package push

import (
	"context"

	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
)

// FCM implements Multicaster over Firebase Cloud Messaging.
type FCM struct {
	client *messaging.Client
}

func NewFCM(client *messaging.Client) *FCM {
	return &FCM{client: client}
}

func (f *FCM) SendMulticast(ctx context.Context, tokens []string, n Notification, data map[string]string) ([]Result, error) {
	resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Icon: n.Icon,
			},
		},
		Data: data,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(resp.Responses))
	for i, r := range resp.Responses {
		results[i] = Result{Class: classify(r.Error), Err: r.Error}
	}
	return results, nil
}

func classify(err error) Class {
	switch {
	case err == nil:
		return ClassOK
	case messaging.IsUnregistered(err):
		return ClassUnregistered
	case errorutils.IsInvalidArgument(err):
		return ClassInvalidToken
	default:
		return ClassOther
	}
}
