package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/export"
	"github.com/piwi3910/matcalc/internal/model"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.history.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	rec, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteOrder(c *gin.Context) {
	if err := s.history.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) clearOrders(c *gin.Context) {
	n, err := s.history.Clear(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

func (s *Server) exportOrdersJSON(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.history.ExportJSON(c.Request.Context(), &buf); err != nil {
		s.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment("orders", "json"))
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

func (s *Server) exportOrdersXLSX(c *gin.Context) {
	orders, err := s.history.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteOrdersXLSX(&buf, orders); err != nil {
		s.respondError(c, fmt.Errorf("failed to build workbook: %w", err))
		return
	}
	c.Header("Content-Disposition", attachment("orders", "xlsx"))
	c.Data(http.StatusOK, mimeXLSX, buf.Bytes())
}

// orderQuotePDF re-renders the quote for a saved order. The cut plan is
// recomputed from the stored rod inputs.
func (s *Server) orderQuotePDF(c *gin.Context) {
	rec, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	mat, _ := s.catalog.Load().Lookup(rec.MaterialKey)
	q := export.Quote{
		OrderID:  rec.ID,
		Meta:     rec.OrderMeta,
		Material: mat,
		Result:   rec.Result(),
		Created:  rec.Timestamp,
	}
	if rec.IsPlate {
		spec := rec.PlateSpec()
		q.Plate = &spec
	} else {
		spec := rec.RodSpec()
		q.Rod = &spec
		if plan, err := engine.PlanCuts(spec); err == nil {
			q.Plan = &plan
		}
	}

	var buf bytes.Buffer
	if err := export.WriteQuotePDF(&buf, q); err != nil {
		s.respondError(c, fmt.Errorf("failed to render quote: %w", err))
		return
	}
	c.Header("Content-Disposition", attachment("quote-"+rec.ID, "pdf"))
	c.Data(http.StatusOK, mimePDF, buf.Bytes())
}

func (s *Server) orderTagsPDF(c *gin.Context) {
	rec, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if rec.IsPlate {
		s.respondError(c, model.InvalidInput("form", "bar tags are only available for rod orders"))
		return
	}
	plan, err := engine.PlanCuts(rec.RodSpec())
	if err != nil {
		s.respondError(c, err)
		return
	}

	mat, _ := s.catalog.Load().Lookup(rec.MaterialKey)
	var buf bytes.Buffer
	if err := export.WriteBarTags(&buf, rec.ID, mat.Name, plan); err != nil {
		s.respondError(c, fmt.Errorf("failed to render bar tags: %w", err))
		return
	}
	c.Header("Content-Disposition", attachment("tags-"+rec.ID, "pdf"))
	c.Data(http.StatusOK, mimePDF, buf.Bytes())
}

func attachment(name, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s-%s.%s"`, name, time.Now().UTC().Format("20060102"), ext)
}
