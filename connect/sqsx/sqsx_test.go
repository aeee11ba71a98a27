package sqsx_test

import (
	"context"
	"testing"

	"github.com/matgreaves/evtrace/connect"
	"github.com/matgreaves/evtrace/connect/sqsx"
)

func TestNewNotifier_MissingQueueURL(t *testing.T) {
	ep := connect.Endpoint{Host: "sqs.amazonaws.com"}
	if _, err := sqsx.NewNotifier(context.Background(), ep); err == nil {
		t.Fatalf("NewNotifier with no SQS_QUEUE_URL attribute should fail")
	}
}
