package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/vyaparsetu/portal/internal/services"
	"github.com/vyaparsetu/portal/internal/store"
)

// accountCreated is the identity provider's account-created payload.
type accountCreated struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

var (
	agentStore *store.FirestoreStore
	once       sync.Once
	initErr    error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "ProvisionAgent" is the entry point name configured in GCP.
	functions.CloudEvent("ProvisionAgent", provisionAgent)
}

// main is required by the Go Functions Framework.
func main() {}

func provisionAgent(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		projectID := os.Getenv("FIRESTORE_PROJECT_ID")
		if projectID == "" {
			projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
		}
		client, err := store.NewFirestoreClient(context.Background(), projectID)
		if err != nil {
			initErr = err
			return
		}
		agentStore = store.NewFirestoreStore(client)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var ev accountCreated
	if err := json.Unmarshal(e.Data(), &ev); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	if err := services.ProvisionAgent(ctx, agentStore, ev.UID, ev.Email); err != nil {
		slog.Error("Provisioning failed", "uid", ev.UID, "error", err)
		return err
	}
	slog.Info("Agent provisioned", "uid", ev.UID)
	return nil
}
