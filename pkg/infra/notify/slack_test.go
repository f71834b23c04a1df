package notify_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/dogamak/wasmpub/pkg/domain/model"
	"github.com/dogamak/wasmpub/pkg/infra/notify"
)

func newWebhookStub(t *testing.T) (*httptest.Server, *string) {
	t.Helper()

	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		body = string(data)
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	return server, &body
}

func testResult() *model.PublishResult {
	return &model.PublishResult{
		Plan: &model.PublishPlan{
			PackageName: "ttk91",
			Version:     "0.1.2",
			RegistryURL: "https://registry.npmjs.org",
			DistTag:     "latest",
		},
		Confirmed: true,
		Duration:  1500 * time.Millisecond,
	}
}

func TestSlackNotifier_Success(t *testing.T) {
	server, body := newWebhookStub(t)
	notifier := notify.NewSlack(server.URL)

	gt.NoError(t, notifier.NotifyResult(context.Background(), testResult(), nil))
	gt.String(t, *body).Contains("Published ttk91@0.1.2")
	gt.String(t, *body).Contains("registry.npmjs.org")
}

func TestSlackNotifier_Failure(t *testing.T) {
	server, body := newWebhookStub(t)
	notifier := notify.NewSlack(server.URL)

	runErr := errors.New("npm publish failed")
	gt.NoError(t, notifier.NotifyResult(context.Background(), testResult(), runErr))
	gt.String(t, *body).Contains("npm publish failed")
	gt.String(t, *body).Contains("ttk91@0.1.2")
}

func TestSlackNotifier_WebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := notify.NewSlack(server.URL)
	gt.Error(t, notifier.NotifyResult(context.Background(), testResult(), nil))
}
