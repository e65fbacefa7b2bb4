package httpserver

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nagarrakshak/caseledger/internal/access"
)

func (h *handlers) routes(app *fiber.App) {
	app.Get("/health", h.health)
	// token failures here feed the session limiter, so it verifies on its own
	app.Post("/api/session", h.openSession)

	api := app.Group("/api", h.jwtProtected(), h.loadPrincipal)

	cases := api.Group("/cases")
	cases.Get("/", h.listCases)
	cases.Get("/:id", h.getCase)
	cases.Delete("/:id", requireCap(access.DeleteCase), h.deleteCase)
	cases.Post("/:id/transfer", requireCap(access.TransferCase), h.transferCase)
	cases.Get("/:id/transfers", requireCap(access.ViewAllCases), h.caseTransfers)

	officers := api.Group("/officers")
	officers.Get("/", requireCap(access.ManageOfficers), h.listOfficers)
	officers.Get("/names", requireCap(access.ViewAllCases), h.officerNames)
	officers.Patch("/:id/status", h.setOfficerStatus)

	api.Get("/stats", requireCap(access.ViewStats), h.stats)
	api.Get("/stats/report.pdf", requireCap(access.ViewStats), h.statsReport)
	api.Get("/audit", requireCap(access.ViewAudit), h.auditTrail)
	api.Get("/deleted", requireCap(access.ViewAudit), h.deletedCases)
}
