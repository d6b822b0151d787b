package http

import (
	"github.com/brnno-tech/brnno-api/internal/application/billing"
	"github.com/brnno-tech/brnno-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/brnno-tech/brnno-api/internal/infrastructure/jwt"
	snsinfra "github.com/brnno-tech/brnno-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router. Optional
// backends (push, payments, tax, auth) may be nil; the affected surfaces
// degrade per their documented contracts.
type Deps struct {
	NotificationRepo *dynamo.NotificationRepo
	UserRepo         *dynamo.UserRepo
	PushSender       snsinfra.PushSender
	TaxClient        billing.JurisdictionClient
	PaymentGateway   billing.PaymentGateway
	JWTProvider      *jwtinfra.Provider
}
