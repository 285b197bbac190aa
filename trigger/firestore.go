package trigger

import (
	"strings"

	"github.com/googleapis/google-cloudevents-go/cloud/firestoredata"
)

// FromDocumentEvent converts a decoded Firestore CloudEvent payload into an
// Event. The event kind follows from which sides are populated: only value
// set means create, only oldValue means delete, both mean update.
func FromDocumentEvent(data *firestoredata.DocumentEventData) Event {
	ev := Event{Params: map[string]string{}}
	switch {
	case data.GetOldValue() == nil:
		ev.Kind = KindCreate
	case data.GetValue() == nil:
		ev.Kind = KindDelete
	default:
		ev.Kind = KindUpdate
	}
	if doc := data.GetOldValue(); doc != nil {
		ev.Before = decodeFields(doc.GetFields())
	}
	if doc := data.GetValue(); doc != nil {
		ev.After = decodeFields(doc.GetFields())
	}
	return ev
}

// DocumentPath returns the path segments of the affected document relative
// to the documents root, e.g.
// "projects/p/databases/(default)/documents/conversations/c1/messages/m1"
// yields ["conversations", "c1", "messages", "m1"].
func DocumentPath(data *firestoredata.DocumentEventData) []string {
	doc := data.GetValue()
	if doc == nil {
		doc = data.GetOldValue()
	}
	if doc == nil {
		return nil
	}
	name := doc.GetName()
	const marker = "/documents/"
	idx := strings.Index(name, marker)
	if idx < 0 {
		return nil
	}
	rel := name[idx+len(marker):]
	if rel == "" {
		return nil
	}
	return strings.Split(rel, "/")
}

func decodeFields(fields map[string]*firestoredata.Value) Snapshot {
	if fields == nil {
		return nil
	}
	snap := make(Snapshot, len(fields))
	for k, v := range fields {
		snap[k] = decodeValue(v)
	}
	return snap
}

func decodeValue(v *firestoredata.Value) any {
	switch vt := v.GetValueType().(type) {
	case *firestoredata.Value_StringValue:
		return vt.StringValue
	case *firestoredata.Value_BooleanValue:
		return vt.BooleanValue
	case *firestoredata.Value_IntegerValue:
		return vt.IntegerValue
	case *firestoredata.Value_DoubleValue:
		return vt.DoubleValue
	case *firestoredata.Value_TimestampValue:
		return vt.TimestampValue.AsTime()
	case *firestoredata.Value_BytesValue:
		return vt.BytesValue
	case *firestoredata.Value_ReferenceValue:
		return vt.ReferenceValue
	case *firestoredata.Value_ArrayValue:
		values := vt.ArrayValue.GetValues()
		arr := make([]any, 0, len(values))
		for _, e := range values {
			arr = append(arr, decodeValue(e))
		}
		return arr
	case *firestoredata.Value_MapValue:
		return map[string]any(decodeFields(vt.MapValue.GetFields()))
	default: // null or geo point, neither appears in our documents
		return nil
	}
}
