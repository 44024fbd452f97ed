package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/engine"
	"github.com/piwi3910/matcalc/internal/model"
	"go.uber.org/zap"
)

func (s *Server) calculateRod(c *gin.Context) {
	var spec model.RodSpec
	if err := bindJSON(c, &spec, rodAliases); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := engine.CalculateRod(spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logWarnings(c, res.Warnings)
	c.JSON(http.StatusOK, res)
}

func (s *Server) calculatePlate(c *gin.Context) {
	var spec model.PlateSpec
	if err := bindJSON(c, &spec, plateAliases); err != nil {
		s.respondError(c, err)
		return
	}
	res, err := engine.CalculatePlate(spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logWarnings(c, res.Warnings)
	c.JSON(http.StatusOK, res)
}

// scrapRequest is the wire form of a standalone scrap recomputation. The
// total cost may be given directly or as a unit cost times quantity.
type scrapRequest struct {
	TotalWeight         float64  `json:"totalWeight"`
	MaterialTotalWeight *float64 `json:"materialTotalWeight"`
	TotalCost           *float64 `json:"totalCost"`
	UnitCost            *float64 `json:"unitCost"`
	Quantity            int      `json:"quantity"`
	ActualProductWeight float64  `json:"actualProductWeight"`
	RecoveryRatio       float64  `json:"recoveryRatio"`
	ScrapUnitPrice      float64  `json:"scrapUnitPrice"`
}

func (r scrapRequest) spec() (model.ScrapSpec, error) {
	spec := model.ScrapSpec{
		TotalWeight:         r.TotalWeight,
		MaterialTotalWeight: r.MaterialTotalWeight,
		Quantity:            r.Quantity,
		ActualProductWeight: r.ActualProductWeight,
		RecoveryRatio:       r.RecoveryRatio,
		ScrapUnitPrice:      r.ScrapUnitPrice,
	}
	switch {
	case r.TotalCost != nil:
		spec.TotalCost = *r.TotalCost
	case r.UnitCost != nil:
		spec.TotalCost = *r.UnitCost * float64(r.Quantity)
	default:
		return model.ScrapSpec{}, model.InvalidInput("totalCost", "total cost is required")
	}
	return spec, nil
}

func (s *Server) calculateScrap(c *gin.Context) {
	var req scrapRequest
	if err := bindJSON(c, &req, scrapAliases); err != nil {
		s.respondError(c, err)
		return
	}
	spec, err := req.spec()
	if err != nil {
		s.respondError(c, err)
		return
	}
	res, err := engine.CalculateScrap(spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logWarnings(c, res.Warnings)
	c.JSON(http.StatusOK, res)
}

func (s *Server) cutPlan(c *gin.Context) {
	var spec model.RodSpec
	if err := bindJSON(c, &spec, rodAliases); err != nil {
		s.respondError(c, err)
		return
	}
	plan, err := engine.PlanCuts(spec)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// scenarioResponse is one what-if variant. Exactly one of Result and
// Error is set.
type scenarioResponse struct {
	Name   string                   `json:"name"`
	Spec   model.RodSpec            `json:"spec"`
	Result *model.CalculationResult `json:"result,omitempty"`
	Error  *ErrorResponse           `json:"error,omitempty"`
}

type compareResponse struct {
	Scenarios []scenarioResponse `json:"scenarios"`
	Best      int                `json:"best"` // Index of the cheapest feasible scenario, -1 if none
}

func (s *Server) compare(c *gin.Context) {
	var spec model.RodSpec
	if err := bindJSON(c, &spec, rodAliases); err != nil {
		s.respondError(c, err)
		return
	}

	results := engine.CompareScenarios(engine.BuildDefaultScenarios(spec))
	resp := compareResponse{
		Scenarios: make([]scenarioResponse, 0, len(results)),
		Best:      engine.BestScenario(results),
	}
	for _, r := range results {
		sr := scenarioResponse{Name: r.Scenario.Name, Spec: r.Scenario.Spec}
		if r.Feasible() {
			res := r.Result
			sr.Result = &res
		} else {
			sr.Error = &ErrorResponse{Message: r.Err.Error(), Kind: "calculation", Suggestions: []string{}}
			if ce, ok := model.AsCalcError(r.Err); ok {
				sr.Error.Message = ce.Message
				sr.Error.Kind = string(ce.Kind)
				sr.Error.Field = ce.Field
			}
		}
		resp.Scenarios = append(resp.Scenarios, sr)
	}
	c.JSON(http.StatusOK, resp)
}

// validate accepts either spec. A body with "form": "plate" or any plate
// dimension is validated as a plate, everything else as a rod.
func (s *Server) validate(c *gin.Context) {
	raw, err := readObject(c, rodAliases, plateAliases)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if isPlateRequest(raw) {
		var spec model.PlateSpec
		if err := decodeObject(raw, &spec); err != nil {
			s.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, engine.ValidatePlateSpec(spec))
		return
	}

	var spec model.RodSpec
	if err := decodeObject(raw, &spec); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, engine.ValidateRodSpec(spec))
}

func isPlateRequest(raw map[string]json.RawMessage) bool {
	if form, ok := raw["form"]; ok {
		var f model.StockForm
		if json.Unmarshal(form, &f) == nil {
			return f == model.FormPlate
		}
	}
	for _, key := range []string{"plateThickness", "plateWidth", "plateLength"} {
		if _, ok := raw[key]; ok {
			return true
		}
	}
	return false
}

func (s *Server) logWarnings(c *gin.Context, warnings []model.ValidationWarning) {
	for _, w := range warnings {
		s.logger.Debug("Advisory",
			zap.String("kind", string(w.Kind)),
			zap.String("field", w.Field),
			zap.String("message", w.Message),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}
