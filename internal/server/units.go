package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stockroom/internal/unit"
)

type unitConversion struct {
	Quantity  float64        `json:"quantity"`
	Unit      unit.Unit      `json:"unit"`
	Boxes     float64        `json:"boxes"`
	Breakdown unit.Breakdown `json:"breakdown"`
	Display   string         `json:"display"`
}

// ConvertUnits previews a quantity in boxes for the given packaging factors.
func (s *Server) ConvertUnits(c *gin.Context) {
	qty, err := strconv.ParseFloat(strings.TrimSpace(c.Query("quantity")), 64)
	if err != nil || qty < 0 {
		AbortWithError(c, newValidationError("quantity", "invalid_quantity", "invalid quantity"))
		return
	}
	u := unit.Box
	if raw := strings.TrimSpace(c.Query("unit")); raw != "" {
		u, err = unit.ParseUnit(raw)
		if err != nil {
			AbortWithError(c, newValidationError("unit", "invalid_unit", "invalid unit"))
			return
		}
	}
	perCase, err := parseOptionalInt(c.Query("boxesPerCase"))
	if err != nil {
		AbortWithError(c, newValidationError("boxesPerCase", "invalid_boxes_per_case", "invalid boxes per case"))
		return
	}
	perSet, err := parseOptionalInt(c.Query("boxesPerSet"))
	if err != nil {
		AbortWithError(c, newValidationError("boxesPerSet", "invalid_boxes_per_set", "invalid boxes per set"))
		return
	}

	specs := unit.NewSpecs(perCase, perSet)
	boxes := unit.ToBoxes(qty, u, specs)
	whole := int(boxes)
	c.JSON(http.StatusOK, gin.H{"data": unitConversion{
		Quantity:  qty,
		Unit:      u,
		Boxes:     boxes,
		Breakdown: unit.BreakdownOf(whole, specs),
		Display:   unit.Format(whole, specs),
	}})
}
