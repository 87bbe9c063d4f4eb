package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mealcycle-backend/internal/domain/meals"
	"github.com/yungbote/mealcycle-backend/internal/http/response"
	"github.com/yungbote/mealcycle-backend/internal/platform/logger"
	"github.com/yungbote/mealcycle-backend/internal/services"
)

type MealHandler struct {
	log   *logger.Logger
	meals services.MealService
}

func NewMealHandler(log *logger.Logger, mealService services.MealService) *MealHandler {
	return &MealHandler{log: log.With("handler", "MealHandler"), meals: mealService}
}

type storeMealRequest struct {
	Date         string `json:"date" binding:"required,mealdate"`
	StartWeek    bool   `json:"start_week"`
	WeekNumber   int    `json:"week_number" binding:"gte=0"`
	MealType     string `json:"meal_type" binding:"required,oneof=Lunch Dinner"`
	Participants string `json:"participants" binding:"required,oneof=PersonA PersonB Both"`
	Meal         string `json:"meal"`
	MealID       string `json:"meal_id"`
	Dessert      string `json:"dessert"`
	Notes        string `json:"notes"`
}

func (r storeMealRequest) input() meals.NewMealInput {
	return meals.NewMealInput{
		Date:         r.Date,
		StartWeek:    r.StartWeek,
		WeekNumber:   r.WeekNumber,
		MealType:     meals.MealType(r.MealType),
		Participants: meals.Participants(r.Participants),
		MealName:     strings.TrimSpace(r.Meal),
		MealID:       strings.TrimSpace(r.MealID),
		Dessert:      r.Dessert,
		Notes:        r.Notes,
	}
}

type mealKeyRequest struct {
	Date         string `json:"date" form:"date" binding:"required,mealdate"`
	MealType     string `json:"meal_type" form:"meal_type" binding:"required,oneof=Lunch Dinner"`
	Participants string `json:"participants" form:"participants" binding:"required,oneof=PersonA PersonB Both"`
}

func (r mealKeyRequest) key() (meals.Key, error) {
	return meals.KeyFor(r.Date, meals.MealType(r.MealType), meals.Participants(r.Participants))
}

type aliasRequest struct {
	MealID      string `json:"meal_id" binding:"required"`
	Replacement string `json:"replacement" binding:"required"`
}

// mealView is the wire form of a meal record.
type mealView struct {
	Date         string `json:"date"`
	Timestamp    int64  `json:"timestamp"`
	StartWeek    bool   `json:"start_week"`
	WeekNumber   int    `json:"week_number"`
	MealType     string `json:"meal_type"`
	Participants string `json:"participants"`
	Meal         string `json:"meal"`
	MealID       string `json:"meal_id"`
	Dessert      string `json:"dessert"`
	Notes        string `json:"notes"`
}

func toMealView(m *meals.Meal) mealView {
	return mealView{
		Date:         m.Day(),
		Timestamp:    m.Timestamp,
		StartWeek:    m.StartWeek(),
		WeekNumber:   m.WeekNumber,
		MealType:     string(m.MealType),
		Participants: string(m.Participants),
		Meal:         m.MealName,
		MealID:       m.MealID,
		Dessert:      m.Dessert,
		Notes:        m.Notes,
	}
}

// POST /api/meals
func (h *MealHandler) StoreMeal(c *gin.Context) {
	var req storeMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMealError(c, h.log, bindError(err))
		return
	}
	m, err := h.meals.StoreMeal(c.Request.Context(), req.input())
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"meal": toMealView(m)})
}

// DELETE /api/meals/single
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	var req mealKeyRequest
	if err := c.ShouldBind(&req); err != nil {
		respondMealError(c, h.log, bindError(err))
		return
	}
	key, err := req.key()
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	if err := h.meals.DeleteMeal(c.Request.Context(), key); err != nil {
		respondMealError(c, h.log, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/meals/single
func (h *MealHandler) GetMeal(c *gin.Context) {
	var req mealKeyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondMealError(c, h.log, bindError(err))
		return
	}
	key, err := req.key()
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	m, err := h.meals.GetMeal(c.Request.Context(), key)
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"meal": toMealView(m)})
}

// GET /api/meals/week?week-number=N
func (h *MealHandler) GetWeek(c *gin.Context) {
	var weekNumber *int
	if raw := strings.TrimSpace(c.Query("week-number")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondMealError(c, h.log, meals.NewError(meals.CodeValidation, "", "week-number must be an integer", err))
			return
		}
		weekNumber = &n
	}
	view, err := h.meals.GetWeek(c.Request.Context(), weekNumber)
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	out := make([]mealView, 0, len(view.Meals))
	for _, m := range view.Meals {
		out = append(out, toMealView(m))
	}
	response.RespondOK(c, gin.H{
		"week_number": view.Cycle.WeekNumber,
		"start":       view.Cycle.Window.Start,
		"end":         view.Cycle.Window.End,
		"total":       len(out),
		"meals":       out,
	})
}

// GET /api/meals/counts
func (h *MealHandler) GetMealCounts(c *gin.Context) {
	counts, err := h.meals.GetMealCounts(c.Request.Context())
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	if counts == nil {
		counts = []meals.MealCount{}
	}
	response.RespondOK(c, gin.H{"counts": counts})
}

// GET /api/meals/names
func (h *MealHandler) GetMealNames(c *gin.Context) {
	names, err := h.meals.GetMealNames(c.Request.Context())
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	response.RespondOK(c, gin.H{"list": names})
}

// GET /api/meals/occurrences/:mealId
func (h *MealHandler) GetOccurrences(c *gin.Context) {
	occ, err := h.meals.GetOccurrences(c.Request.Context(), c.Param("mealId"))
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"occurrences": occ})
}

// POST /api/meals/replacement
func (h *MealHandler) InsertReplacement(c *gin.Context) {
	var req aliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMealError(c, h.log, bindError(err))
		return
	}
	if err := h.meals.InsertAlias(c.Request.Context(), req.MealID, req.Replacement); err != nil {
		respondMealError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"meal_id": req.MealID, "replacement": req.Replacement})
}

// GET /api/meals/replacement
func (h *MealHandler) ListReplacements(c *gin.Context) {
	aliases, err := h.meals.ListAliases(c.Request.Context())
	if err != nil {
		respondMealError(c, h.log, err)
		return
	}
	if aliases == nil {
		aliases = map[string]string{}
	}
	response.RespondOK(c, gin.H{"replacements": aliases})
}
