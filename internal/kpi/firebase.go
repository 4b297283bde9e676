package kpi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vzy-dashboard/backend/internal/models"
)

// FirebaseSource is the app metrics contract. It validates the service
// account it is given but does not pull metrics yet.
type FirebaseSource struct {
	ProjectID       string
	CredentialsJSON string
	Apps            []models.AppTarget
	Log             zerolog.Logger
}

type serviceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

func (f FirebaseSource) FetchApps(ctx context.Context) (map[string]models.MetricSet, error) {
	if strings.TrimSpace(f.ProjectID) == "" || strings.TrimSpace(f.CredentialsJSON) == "" {
		f.Log.Info().Msg("Firebase credentials not configured, skipping app metrics fetch")
		return nil, nil
	}
	sa, err := decodeServiceAccount(f.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	// TODO: pull Crashlytics crash/ANR rates and Analytics DAU per app target.
	f.Log.Info().
		Str("project_id", f.ProjectID).
		Str("client_email", sa.ClientEmail).
		Int("apps", len(f.Apps)).
		Msg("Firebase auto-fetch not available yet")
	return nil, nil
}

func decodeServiceAccount(b64 string) (serviceAccount, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(b64))
	if err != nil {
		return serviceAccount{}, fmt.Errorf("firebase credentials: not base64: %w", err)
	}
	var sa serviceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return serviceAccount{}, fmt.Errorf("firebase credentials: %w", err)
	}
	if sa.Type != "service_account" {
		return serviceAccount{}, fmt.Errorf("firebase credentials: unexpected type %q", sa.Type)
	}
	return sa, nil
}
