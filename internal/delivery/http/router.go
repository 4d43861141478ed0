package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"householdledger/internal/delivery/http/controllers"
	"householdledger/internal/delivery/http/middleware"
	"householdledger/internal/domain"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Auth         *controllers.AuthController
	Users        *controllers.UserController
	Families     *controllers.FamilyController
	Members      *controllers.MemberController
	Transactions *controllers.TransactionController
	Categories   *controllers.CategoryController
	Verifier     domain.TokenVerifier
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(deps RouterDeps, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(deps.Verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", deps.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", deps.Auth.Login)

	// Current user
	mux.HandleFunc("GET /users/me", requireAuth(deps.Users.GetMe))
	mux.HandleFunc("PUT /users/me", requireAuth(deps.Users.UpdateMe))
	mux.HandleFunc("GET /users/me/settings", requireAuth(deps.Users.GetSettings))
	mux.HandleFunc("PUT /users/me/settings", requireAuth(deps.Users.UpdateSettings))
	mux.HandleFunc("GET /families/invitations", requireAuth(deps.Members.ListMyInvitations))

	// Families
	mux.HandleFunc("POST /families", requireAuth(deps.Families.CreateFamily))
	mux.HandleFunc("GET /families", requireAuth(deps.Families.ListMyFamilies))
	mux.HandleFunc("GET /families/{familyID}", requireAuth(deps.Families.GetFamily))
	mux.HandleFunc("PATCH /families/{familyID}", requireAuth(deps.Families.RenameFamily))

	// Membership
	mux.HandleFunc("POST /families/{familyID}/members", requireAuth(deps.Members.AddMember))
	mux.HandleFunc("GET /families/{familyID}/members", requireAuth(deps.Members.ListMembers))
	mux.HandleFunc("PUT /families/{familyID}/members/{userID}", requireAuth(deps.Members.UpdateMemberRole))
	mux.HandleFunc("DELETE /families/{familyID}/members/{userID}", requireAuth(deps.Members.RemoveMember))
	mux.HandleFunc("GET /families/{familyID}/invitations", requireAuth(deps.Members.ListFamilyInvitations))

	// Invitations by token
	mux.HandleFunc("GET /families/invitations/{token}", requireAuth(deps.Members.GetInvitation))
	mux.HandleFunc("POST /families/invitations/{token}/accept", requireAuth(deps.Members.AcceptInvitation))
	mux.HandleFunc("POST /families/invitations/{token}/reject", requireAuth(deps.Members.RejectInvitation))

	// Ledger
	mux.HandleFunc("POST /families/{familyID}/transactions", requireAuth(deps.Transactions.CreateTransaction))
	mux.HandleFunc("GET /families/{familyID}/transactions", requireAuth(deps.Transactions.ListTransactions))
	mux.HandleFunc("PUT /families/{familyID}/transactions/{transactionID}", requireAuth(deps.Transactions.UpdateTransaction))
	mux.HandleFunc("DELETE /families/{familyID}/transactions/{transactionID}", requireAuth(deps.Transactions.DeleteTransaction))
	mux.HandleFunc("GET /families/{familyID}/summary", requireAuth(deps.Transactions.MonthlySummary))

	// Categories
	mux.HandleFunc("POST /families/{familyID}/categories", requireAuth(deps.Categories.CreateCategory))
	mux.HandleFunc("GET /families/{familyID}/categories", requireAuth(deps.Categories.ListCategories))
	mux.HandleFunc("PUT /families/{familyID}/categories/{categoryID}", requireAuth(deps.Categories.UpdateCategory))
	mux.HandleFunc("DELETE /families/{familyID}/categories/{categoryID}", requireAuth(deps.Categories.DeleteCategory))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
