package quests

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/guild/catalog"
	"github.com/MaxChevalier/LesCapucheDOpale-cloud-sub000/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// quest resource
	r.POST("/quests", h.CreateQuest)
	r.GET("/quests", h.ListQuests)
	r.GET("/quests/:quest_id", h.GetQuest)
	r.PUT("/quests/:quest_id", h.UpdateQuest)
	r.DELETE("/quests/:quest_id", h.DeleteQuest)

	// lifecycle transitions
	r.POST("/quests/:quest_id/validate", h.ValidateQuest)
	r.POST("/quests/:quest_id/invalidate", h.InvalidateQuest)
	r.POST("/quests/:quest_id/refuse", h.RefuseQuest)
	r.POST("/quests/:quest_id/start", h.StartQuest)
	r.POST("/quests/:quest_id/abandon", h.AbandonQuest)
	r.POST("/quests/:quest_id/finish", h.FinishQuest)

	// assignment sets
	r.POST("/quests/:quest_id/adventurers", h.AttachAdventurers)
	r.DELETE("/quests/:quest_id/adventurers", h.DetachAdventurers)
	r.PUT("/quests/:quest_id/adventurers", h.SetAdventurers)
	r.POST("/quests/:quest_id/equipment-stocks", h.AttachEquipmentStocks)
	r.DELETE("/quests/:quest_id/equipment-stocks", h.DetachEquipmentStocks)
	r.PUT("/quests/:quest_id/equipment-stocks", h.SetEquipmentStocks)
}

// ---------- handlers ----------

func (h *Handler) CreateQuest(c *gin.Context) {
	var req CreateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	creatorID, ok := actorUserID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid authenticated user id"))
		return
	}

	res, err := h.svc.Create(c.Request.Context(), creatorID, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Header("Location", "/quests/"+strconv.FormatInt(res.QuestID, 10))
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	res, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListQuests(c *gin.Context) {
	var f QuestFilter
	if v := c.Query("status"); v != "" {
		st := catalog.Status(v)
		f.Status = &st
	}
	if v := c.Query("creator_user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CreatorUserID = &id
		}
	}
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), 50),
		Offset: parseIntDefault(c.Query("offset"), 0),
		Order:  c.DefaultQuery("order", "desc"),
	}

	res, err := h.svc.List(c.Request.Context(), f, p)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	var req UpdateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ValidateQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	var req ValidateQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing recommended_xp"))
		return
	}
	res, err := h.svc.Validate(c.Request.Context(), id, req.RecommendedXP, actorRole(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) InvalidateQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	res, err := h.svc.Invalidate(c.Request.Context(), id, actorRole(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RefuseQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	res, err := h.svc.Refuse(c.Request.Context(), id, actorRole(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) StartQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	res, err := h.svc.Start(c.Request.Context(), id)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) AbandonQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	res, err := h.svc.Abandon(c.Request.Context(), id, actorRole(c))
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) FinishQuest(c *gin.Context) {
	id, ok := questID(c)
	if !ok {
		return
	}
	var req FinishQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json or missing success flag"))
		return
	}
	res, err := h.svc.Finish(c.Request.Context(), id, *req.Success)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- assignment handlers ----------

func (h *Handler) AttachAdventurers(c *gin.Context) {
	h.assign(c, h.svc.AttachAdventurers)
}

func (h *Handler) DetachAdventurers(c *gin.Context) {
	h.assign(c, h.svc.DetachAdventurers)
}

func (h *Handler) SetAdventurers(c *gin.Context) {
	h.assign(c, h.svc.SetAdventurers)
}

func (h *Handler) AttachEquipmentStocks(c *gin.Context) {
	h.assign(c, h.svc.AttachEquipmentStocks)
}

func (h *Handler) DetachEquipmentStocks(c *gin.Context) {
	h.assign(c, h.svc.DetachEquipmentStocks)
}

func (h *Handler) SetEquipmentStocks(c *gin.Context) {
	h.assign(c, h.svc.SetEquipmentStocks)
}

func (h *Handler) assign(c *gin.Context, op func(ctx context.Context, questID int64, ids []int64) (QuestResponse, error)) {
	id, ok := questID(c)
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "invalid json"))
		return
	}
	res, err := op(c.Request.Context(), id, req.IDs)
	if err != nil {
		c.JSON(ToHTTPStatus(err), errorFromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func questID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("quest_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidArgument, "quest_id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func actorRole(c *gin.Context) Role {
	return Role(c.GetString(auth.CtxRoleKey))
}

func actorUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetString(auth.CtxUserIDKey), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code Code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func errorFromErr(err error) errorDTO {
	var msg string
	var code Code = CodeInternal
	if api, ok := err.(*APIError); ok {
		code, msg = api.Code, api.Message
	} else {
		msg = err.Error()
	}
	return errorBody(code, msg)
}
