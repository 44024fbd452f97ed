package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/model"
	"go.uber.org/zap"
)

// quoteResponse carries the resolved spec next to the result so the
// client sees exactly which catalog and default values were applied.
type quoteResponse struct {
	MaterialKey string                  `json:"materialKey"`
	Rod         *model.RodSpec          `json:"rodSpec,omitempty"`
	Plate       *model.PlateSpec        `json:"plateSpec,omitempty"`
	Result      model.CalculationResult `json:"result"`
	CutPlan     *model.CutPlan          `json:"cutPlan,omitempty"`
	Order       *model.OrderRecord      `json:"order,omitempty"`
}

func (s *Server) quoteRod(c *gin.Context) {
	var form model.RodForm
	if err := bindJSON(c, &form, rodAliases); err != nil {
		s.respondError(c, err)
		return
	}

	defaults := s.defaults.Load()
	mat, note := s.resolveMaterial(form.MaterialKey)
	spec, err := model.BuildRodSpec(form, mat, defaults)
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := engine.CalculateRod(spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if note != nil {
		res.Warnings = append(res.Warnings, *note)
	}
	s.logWarnings(c, res.Warnings)

	resp := quoteResponse{MaterialKey: mat.Key, Rod: &spec, Result: res}
	if plan, err := engine.PlanCuts(spec); err == nil {
		resp.CutPlan = &plan
	}
	if s.shouldSave(c, defaults) {
		rec, err := s.history.Append(c.Request.Context(), model.NewRodOrder(form.Order, mat.Key, spec, res))
		if err != nil {
			s.respondError(c, fmt.Errorf("failed to save order: %w", err))
			return
		}
		s.logger.Info("Order saved", zap.String("id", rec.ID), zap.String("material", rec.MaterialKey))
		resp.Order = &rec
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) quotePlate(c *gin.Context) {
	var form model.PlateForm
	if err := bindJSON(c, &form, plateAliases); err != nil {
		s.respondError(c, err)
		return
	}

	defaults := s.defaults.Load()
	mat, note := s.resolveMaterial(form.MaterialKey)
	spec := model.BuildPlateSpec(form, mat, defaults)
	res, err := engine.CalculatePlate(spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if note != nil {
		res.Warnings = append(res.Warnings, *note)
	}
	s.logWarnings(c, res.Warnings)

	resp := quoteResponse{MaterialKey: mat.Key, Plate: &spec, Result: res}
	if s.shouldSave(c, defaults) {
		rec, err := s.history.Append(c.Request.Context(), model.NewPlateOrder(form.Order, mat.Key, spec, res))
		if err != nil {
			s.respondError(c, fmt.Errorf("failed to save order: %w", err))
			return
		}
		s.logger.Info("Order saved", zap.String("id", rec.ID), zap.String("material", rec.MaterialKey))
		resp.Order = &rec
	}
	c.JSON(http.StatusOK, resp)
}

// resolveMaterial looks key up in the current catalog snapshot. A miss
// falls back to the default material and returns a note for the result.
func (s *Server) resolveMaterial(key string) (model.MaterialDefaults, *model.ValidationWarning) {
	mat, ok := s.catalog.Load().Lookup(key)
	if ok {
		return mat, nil
	}
	return mat, &model.ValidationWarning{
		Kind:       model.WarningWarn,
		Field:      "materialKey",
		Message:    fmt.Sprintf("Material %q is not in the catalog; default values were used", key),
		Suggestion: "Add the material to the catalog or pick an existing key",
	}
}

func (s *Server) shouldSave(c *gin.Context, defaults model.DefaultsConfig) bool {
	return s.history != nil && defaults.SaveHistory && c.Query("save") != "false"
}
