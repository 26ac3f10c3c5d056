// internal/platform/di/infra.go
package di

import (
	"context"
	"errors"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "pharmacy/internal/infra/config"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (Firestore / Firebase / GCS / SecretManager)
// - owns env/config-resolved runtime settings
//
// Firestore is strict (init returns error); Firebase, GCS and SecretManager
// are best-effort: the features behind them degrade, the server still boots.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
}

// NewInfra initializes shared infra.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di.infra: config is nil")
	}

	projectID := strings.TrimSpace(cfg.GetFirestoreProjectID())
	if projectID == "" {
		return nil, errors.New("di.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] using credentials file for GCP clients")
	} else {
		log.Printf("[di.infra] using Application Default Credentials")
	}

	// 1) Firestore (strict)
	{
		fsClient, err := firestore.NewClient(ctx, projectID, clientOpts...)
		if err != nil {
			return nil, err
		}
		inf.Firestore = fsClient
	}

	// 2) Firebase app + auth (best-effort; auth-protected routes 503 without it)
	{
		fbCfg := &firebase.Config{ProjectID: cfg.GetFirebaseProjectID()}
		app, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: firebase.NewApp failed: %v (auth and push disabled)", err)
		} else {
			inf.FirebaseApp = app
			authClient, err := app.Auth(ctx)
			if err != nil {
				log.Printf("[di.infra] WARN: firebase auth client failed: %v (auth disabled)", err)
			} else {
				inf.FirebaseAuth = authClient
			}
		}
	}

	// 3) GCS (best-effort; image upload disabled without it)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: storage.NewClient failed: %v (image upload disabled)", err)
		} else {
			inf.GCS = gcsClient
		}
	}

	// 4) Secret Manager (best-effort; used for the SendGrid key)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: secretmanager.NewClient failed: %v (secret-backed settings disabled)", err)
		} else {
			inf.SecretManager = sm
		}
	}

	return inf, nil
}

// ResolveSendGridKey returns the SendGrid API key: the env var when set,
// otherwise the configured Secret Manager secret ("" when neither resolves).
func (inf *Infra) ResolveSendGridKey(ctx context.Context) string {
	if key := strings.TrimSpace(inf.Config.SendGridAPIKey); key != "" {
		return key
	}

	secretID := strings.TrimSpace(inf.Config.SendGridAPIKeySecret)
	if secretID == "" || inf.SecretManager == nil {
		return ""
	}

	name := "projects/" + inf.ProjectID + "/secrets/" + secretID + "/versions/latest"
	resp, err := inf.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		log.Printf("[di.infra] WARN: AccessSecretVersion failed for %s: %v (receipt mail disabled)", secretID, err)
		return ""
	}
	if resp == nil || resp.Payload == nil {
		return ""
	}
	return strings.TrimSpace(string(resp.Payload.Data))
}

// Close releases owned clients.
func (inf *Infra) Close() {
	if inf == nil {
		return
	}
	if inf.Firestore != nil {
		if err := inf.Firestore.Close(); err != nil {
			log.Printf("[di.infra] WARN: firestore close: %v", err)
		}
	}
	if inf.GCS != nil {
		if err := inf.GCS.Close(); err != nil {
			log.Printf("[di.infra] WARN: gcs close: %v", err)
		}
	}
	if inf.SecretManager != nil {
		if err := inf.SecretManager.Close(); err != nil {
			log.Printf("[di.infra] WARN: secretmanager close: %v", err)
		}
	}
}
