// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"log"
	"net/http"

	hh "pharmacy/internal/adapters/in/http/handler"
	"pharmacy/internal/adapters/in/http/middleware"
	fs "pharmacy/internal/adapters/out/firestore"
	"pharmacy/internal/adapters/out/gcs"
	"pharmacy/internal/adapters/out/identity"
	"pharmacy/internal/adapters/out/mail"
	"pharmacy/internal/adapters/out/messaging"
	usecase "pharmacy/internal/application/usecase"
)

// Container wires repositories, usecases and handlers on top of Infra.
type Container struct {
	Infra *Infra

	CartUC *usecase.CartUsecase
	DrugUC *usecase.DrugUsecase
	UserUC *usecase.UserUsecase
}

// NewContainer builds the full object graph. Optional adapters (push, mail,
// image storage) come up nil-safe: the usecases treat them as absent.
func NewContainer(ctx context.Context, inf *Infra) (*Container, error) {
	if inf == nil || inf.Firestore == nil {
		return nil, errors.New("di.container: infra or firestore is nil")
	}

	cartRepo := fs.NewCartRepositoryFS(inf.Firestore)
	drugRepo := fs.NewDrugRepositoryFS(inf.Firestore)
	userRepo := fs.NewUserRepositoryFS(inf.Firestore)

	// push notices (best-effort adapter; nil when messaging is unavailable)
	var push usecase.PushSender
	if inf.FirebaseApp != nil {
		fcm, err := messaging.NewFCMClient(ctx, inf.FirebaseApp)
		if err != nil {
			log.Printf("[di.container] WARN: fcm client failed: %v (purchase push disabled)", err)
		} else {
			push = fcm
		}
	}

	// receipt mail (best-effort adapter; nil without a SendGrid key)
	var receipts usecase.ReceiptSender
	if key := inf.ResolveSendGridKey(ctx); key != "" {
		receipts = mail.NewReceiptMailer(mail.NewSendGridClient(key), inf.Config.MailFrom)
	} else {
		log.Printf("[di.container] receipt mail not configured (no SendGrid key)")
	}

	// drug images (nil without a bucket)
	var images usecase.ImageStore
	if inf.GCS != nil && inf.Config.DrugImageBucket != "" {
		images = gcs.NewDrugImageRepositoryGCS(inf.GCS, inf.Config.DrugImageBucket)
	} else {
		log.Printf("[di.container] drug image upload not configured (no GCS client or bucket)")
	}

	var ident usecase.IdentityProvider
	if inf.FirebaseAuth != nil {
		ident = identity.NewFirebaseIdentity(inf.FirebaseAuth)
	}

	return &Container{
		Infra:  inf,
		CartUC: usecase.NewCartUsecase(cartRepo, drugRepo, userRepo, push, receipts),
		DrugUC: usecase.NewDrugUsecase(drugRepo, images),
		UserUC: usecase.NewUserUsecase(userRepo, ident),
	}, nil
}

// Handler assembles the HTTP surface: route registration, bearer-token auth
// on everything under /api except registration, recover inside, CORS outside.
func (c *Container) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authMW := &middleware.UserAuthMiddleware{
		FirebaseAuth: c.Infra.FirebaseAuth,
		Users:        fs.NewUserRepositoryFS(c.Infra.Firestore),
	}

	drugH := authMW.Handler(hh.NewDrugHandler(c.DrugUC))
	mux.Handle("/api/drugs", drugH)
	mux.Handle("/api/drugs/", drugH)

	cartH := authMW.Handler(hh.NewCartHandler(c.CartUC))
	mux.Handle("/api/cart", cartH)
	mux.Handle("/api/cart/", cartH)

	userH := hh.NewUserHandler(c.UserUC)
	userAuthed := authMW.Handler(userH)
	// registration is the one open /api endpoint
	mux.Handle("/api/users", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			userH.ServeHTTP(w, r)
			return
		}
		userAuthed.ServeHTTP(w, r)
	}))
	mux.Handle("/api/users/", userAuthed)

	return middleware.CORS(middleware.Recover(mux))
}
