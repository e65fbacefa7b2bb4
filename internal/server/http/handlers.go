package httpserver

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nagarrakshak/caseledger/internal/access"
	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/report"
	"github.com/nagarrakshak/caseledger/internal/service"
)

type reasonRequest struct {
	Reason string `json:"reason"`
}

type transferRequest struct {
	ToOfficer   string `json:"to_officer"`
	FromOfficer string `json:"from_officer"`
	Reason      string `json:"reason"`
}

type statusRequest struct {
	Status string `json:"status"`
	Online bool   `json:"online"`
}

func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errs.Validationf("invalid request body")
	}
	return nil
}

func (h *handlers) health(c *fiber.Ctx) error {
	db := "unknown"
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			db = "unavailable"
		} else {
			db = "ok"
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "db": db, "time": time.Now().UTC().Format(time.RFC3339)})
}

func (h *handlers) openSession(c *fiber.Ctx) error {
	token, err := bearer(c)
	if err != nil {
		return err
	}
	sess, err := h.Sessions.Open(c.UserContext(), token, c.IP())
	if err != nil {
		return err
	}
	return c.JSON(sess)
}

// listCases returns every case to callers who may see all of them; officers only ever
// get their own list.
func (h *handlers) listCases(c *fiber.Ctx) error {
	officer, all, err := principal(c).CaseScope(c.Query("officer"))
	if err != nil {
		return err
	}
	var list service.CaseList
	if all {
		list, err = h.Cases.LoadAll(c.UserContext())
	} else {
		list, err = h.Cases.LoadByOfficer(c.UserContext(), officer)
	}
	if err != nil {
		return err
	}
	if list.Source == service.SourceFixtures {
		captureMessage(c, "case list served from fixtures")
	}
	return c.JSON(list)
}

func (h *handlers) getCase(c *fiber.Ctx) error {
	p := principal(c)
	if !p.Can(access.ViewOwnCases) && !p.Can(access.ViewAllCases) {
		return errs.ErrForbidden
	}
	cs, err := h.Cases.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	// other officers' cases are reported as missing, not forbidden
	if cs == nil || !p.CanSeeCase(cs.AssignedOfficer) {
		return errs.ErrNotFound
	}
	return c.JSON(cs)
}

func (h *handlers) deleteCase(c *fiber.Ctx) error {
	var req reasonRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Cases.Delete(c.UserContext(), c.Params("id"), req.Reason, principal(c).Identity.Subject); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) transferCase(c *fiber.Ctx) error {
	var req transferRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	entry, err := h.Cases.Transfer(c.UserContext(), service.TransferInput{
		CaseID:      c.Params("id"),
		ToOfficer:   req.ToOfficer,
		FromOfficer: req.FromOfficer,
		Reason:      req.Reason,
		Actor:       principal(c).Identity.Subject,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *handlers) caseTransfers(c *fiber.Ctx) error {
	out, err := h.Cases.Transfers(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if out == nil {
		out = []model.TransferLogEntry{}
	}
	return c.JSON(fiber.Map{"transfers": out})
}

func (h *handlers) listOfficers(c *fiber.Ctx) error {
	role := model.Role(c.Query("role"))
	if role != "" {
		if _, ok := access.ParseRole(string(role)); !ok {
			return errs.Validationf("unknown role %q", role)
		}
	}
	out, err := h.Officers.List(c.UserContext(), role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"officers": out})
}

func (h *handlers) officerNames(c *fiber.Ctx) error {
	names, err := h.Cases.ListOfficerNames(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"names": names})
}

// setOfficerStatus lets officers change their own availability; changing anyone
// else's needs ManageOfficers.
func (h *handlers) setOfficerStatus(c *fiber.Ctx) error {
	p := principal(c)
	id := c.Params("id")
	if !p.Can(access.ManageOfficers) && !(p.Identity.Role == model.RoleOfficer && id == p.Identity.Subject) {
		return errs.ErrForbidden
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.Officers.SetStatus(c.UserContext(), id, req.Status, req.Online, p.Identity.Subject); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handlers) stats(c *fiber.Ctx) error {
	d, err := h.Stats.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(d)
}

func (h *handlers) statsReport(c *fiber.Ctx) error {
	d, err := h.Stats.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := report.WriteDashboard(&buf, d); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="dashboard-`+d.GeneratedAt.Format("20060102")+`.pdf"`)
	return c.Send(buf.Bytes())
}

func (h *handlers) auditTrail(c *fiber.Ctx) error {
	out, err := h.Audit.List(c.UserContext(), c.Query("target_type"), c.Query("target_id"), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	if out == nil {
		out = []model.AuditLogEntry{}
	}
	return c.JSON(fiber.Map{"entries": out})
}

func (h *handlers) deletedCases(c *fiber.Ctx) error {
	out, err := h.Cases.Deleted(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return err
	}
	if out == nil {
		out = []model.DeletedRecord{}
	}
	return c.JSON(fiber.Map{"deleted": out})
}
