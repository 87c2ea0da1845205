package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"finvoiceBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	investorMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleInvestor))
	companyMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleCompany))

	mux := pat.New()

	// Users
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))

	// Proposals
	mux.Post("/proposals", investorMiddleware.ThenFunc(app.proposalHandler.Create))
	mux.Post("/proposals/:id/send", investorMiddleware.ThenFunc(app.proposalHandler.Send))
	mux.Post("/proposals/:id/withdraw", investorMiddleware.ThenFunc(app.proposalHandler.Withdraw))
	mux.Post("/proposals/:id/approve", companyMiddleware.ThenFunc(app.proposalHandler.Approve))
	mux.Post("/proposals/:id/reject", companyMiddleware.ThenFunc(app.proposalHandler.Reject))
	mux.Post("/proposals/:id/counter_offer", companyMiddleware.ThenFunc(app.proposalHandler.CounterOffer))
	mux.Get("/proposals/mine", investorMiddleware.ThenFunc(app.proposalHandler.ListMine))
	mux.Get("/proposals/invoice/:invoice_id", companyMiddleware.ThenFunc(app.proposalHandler.ListByInvoice))
	mux.Get("/proposals/:id", authMiddleware.ThenFunc(app.proposalHandler.GetByID))

	// Investments
	mux.Get("/investments/mine", investorMiddleware.ThenFunc(app.investmentHandler.ListMine))
	mux.Post("/investments/:id/complete", companyMiddleware.ThenFunc(app.investmentHandler.Complete))
	mux.Post("/investments/:id/cancel", companyMiddleware.ThenFunc(app.investmentHandler.Cancel))
	mux.Get("/investments/:id", authMiddleware.ThenFunc(app.investmentHandler.GetByID))

	// Invoices
	mux.Post("/invoices/:id/documents", companyMiddleware.ThenFunc(app.invoiceHandler.AttachDocument))
	mux.Get("/invoices/company/:company_id", authMiddleware.ThenFunc(app.invoiceHandler.ListByCompany))
	mux.Get("/invoices/:id", authMiddleware.ThenFunc(app.invoiceHandler.GetByID))

	// Push tokens
	mux.Post("/fcm/token", authMiddleware.ThenFunc(app.fcmHandler.RegisterToken))
	mux.Del("/fcm/token/:token", authMiddleware.ThenFunc(app.fcmHandler.DeleteToken))

	// Event stream
	mux.Get("/ws", authMiddleware.ThenFunc(app.WebSocketHandler))

	return standardMiddleware.Then(mux)
}
