// internal/infra/config/config.go
package config

import "os"

// Config holds environment-derived settings for the whole application.
type Config struct {
	Port string

	GCPCreds                 string
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// Firebase Auth / Cloud Messaging project (defaults to the GCP project).
	FirebaseProjectID string

	// Bucket for drug form images. Empty disables image upload.
	DrugImageBucket string

	// SendGrid key for purchase receipts. If SENDGRID_API_KEY is empty and
	// SENDGRID_API_KEY_SECRET is set, the key is fetched from Secret Manager.
	SendGridAPIKey       string
	SendGridAPIKeySecret string
	MailFrom             string
}

// Load reads environment variables and returns a Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		DrugImageBucket:          os.Getenv("DRUG_IMAGE_BUCKET"),
		SendGridAPIKey:           os.Getenv("SENDGRID_API_KEY"),
		SendGridAPIKeySecret:     os.Getenv("SENDGRID_API_KEY_SECRET"),
		MailFrom:                 getenvDefault("MAIL_FROM", "no-reply@pharmacy.local"),
	}

	return cfg
}

// GetFirestoreProjectID returns the Firestore/GCP project ID.
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

// GetFirebaseProjectID returns the Firebase project ID.
func (c *Config) GetFirebaseProjectID() string {
	return c.FirebaseProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
