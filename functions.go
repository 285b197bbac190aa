package community

import (
	"context"
	"log/slog"
	"os"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2/event"
	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
	"google.golang.org/protobuf/proto"

	"github.com/teenchurch/community/log"
	"github.com/teenchurch/community/moderate"
	"github.com/teenchurch/community/push"
	"github.com/teenchurch/community/store"
	"github.com/teenchurch/community/trigger"
)

var (
	openaiAPIKey = os.Getenv("OPENAI_API_KEY")
)

func init() {
	functions.CloudEvent("OnMessageCreated", onMessageCreated)
	functions.CloudEvent("OnFriendRequestCreated", onFriendRequestCreated)
	functions.CloudEvent("OnFriendRequestUpdated", onFriendRequestUpdated)
	functions.CloudEvent("OnFriendDeleted", onFriendDeleted)
	functions.CloudEvent("OnContentCreated", onContentCreated)
	functions.HTTP("RegisterDevice", RegisterDevice)
	functions.HTTP("ReapPresence", ReapPresence)
}

// runtime bundles the per-invocation clients. Clients are built inside the
// invocation path and closed with it; handlers stay stateless.
type runtime struct {
	firestore *firestore.Client
	handlers  *Handlers
}

func newRuntime(ctx context.Context) (*runtime, error) {
	projectID, err := metadata.ProjectIDWithContext(ctx)
	if err != nil {
		return nil, err
	}
	fsClient, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		fsClient.Close()
		return nil, err
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		fsClient.Close()
		return nil, err
	}

	st := store.NewFirestore(fsClient)
	dispatcher := push.NewDispatcher(push.NewFCM(messagingClient), st)
	var moderator ModerationChecker
	if openaiAPIKey != "" {
		moderator = moderate.New(openaiAPIKey)
	}
	return &runtime{
		firestore: fsClient,
		handlers:  NewHandlers(st, dispatcher, moderator),
	}, nil
}

func (r *runtime) Close() {
	r.firestore.Close()
}

func onMessageCreated(ctx context.Context, ce cloudevents.Event) error {
	runTrigger(ctx, ce, []string{"conversationId", "messageId"}, (*Handlers).MessageCreated)
	return nil
}

func onFriendRequestCreated(ctx context.Context, ce cloudevents.Event) error {
	runTrigger(ctx, ce, []string{"requestId"}, (*Handlers).FriendRequestCreated)
	return nil
}

func onFriendRequestUpdated(ctx context.Context, ce cloudevents.Event) error {
	runTrigger(ctx, ce, []string{"requestId"}, (*Handlers).FriendRequestUpdated)
	return nil
}

func onFriendDeleted(ctx context.Context, ce cloudevents.Event) error {
	runTrigger(ctx, ce, []string{"userId", "friendId"}, (*Handlers).FriendDeleted)
	return nil
}

func onContentCreated(ctx context.Context, ce cloudevents.Event) error {
	runTrigger(ctx, ce, []string{"contentId"}, (*Handlers).ContentCreated)
	return nil
}

// runTrigger decodes the Firestore payload, runs one handler and logs its
// report. Trigger invocations never surface an error to the platform, so a
// failed handler is not retried.
func runTrigger(ctx context.Context, ce cloudevents.Event, paramNames []string, handle func(*Handlers, context.Context, trigger.Event) trigger.Report) {
	logger := log.LoggerFromContext(ctx).With(slog.String("event", ce.Type()))
	ctx = log.WithLogger(ctx, logger)

	ev, err := decodeEvent(ce, paramNames)
	if err != nil {
		logger.Error("error decoding firestore event", slog.String(ErrorMsgLogField, err.Error()))
		return
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		logger.Error("error building clients", slog.String(ErrorMsgLogField, err.Error()))
		return
	}
	defer rt.Close()

	rep := handle(rt.handlers, ctx, ev)
	logReport(logger, rep)
}

func decodeEvent(ce cloudevents.Event, paramNames []string) (trigger.Event, error) {
	var data firestoredata.DocumentEventData
	if err := proto.Unmarshal(ce.Data(), &data); err != nil {
		return trigger.Event{}, err
	}
	ev := trigger.FromDocumentEvent(&data)
	segments := trigger.DocumentPath(&data)
	// document ids sit at the odd path positions: collection/id/collection/id
	for i, name := range paramNames {
		pos := 2*i + 1
		if pos < len(segments) {
			ev.Params[name] = segments[pos]
		}
	}
	return ev, nil
}

func logReport(logger *slog.Logger, rep trigger.Report) {
	attrs := make([]any, 0, len(rep.Steps))
	for _, step := range rep.Steps {
		attrs = append(attrs, slog.String(step.Name, step.Status.String()))
	}
	logger.Info("handler finished", attrs...)
}
