package api

import (
	"net/http"

	"github.com/covenantlabs/covenant-server/internal/models"
	"github.com/gin-gonic/gin"
)

// CreateContract handles POST /api/contracts
func (h *Handler) CreateContract(c *gin.Context) {
	var req models.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contract, err := h.svc.CreateContract(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

// ListContracts handles GET /api/contracts
func (h *Handler) ListContracts(c *gin.Context) {
	contracts, err := h.svc.ListContracts(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts)
}

// GetContract handles GET /api/contracts/:id
func (h *Handler) GetContract(c *gin.Context) {
	contract, err := h.svc.GetContract(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// UpdateContract handles PUT /api/contracts/:id
func (h *Handler) UpdateContract(c *gin.Context) {
	var req models.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contract, err := h.svc.UpdateContract(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// DeleteContract handles DELETE /api/contracts/:id
func (h *Handler) DeleteContract(c *gin.Context) {
	if err := h.svc.DeleteContract(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Status: "success", Message: "Contract removed"})
}

// SignContract handles POST /api/contracts/:id/sign
func (h *Handler) SignContract(c *gin.Context) {
	var req models.SignContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	contract, err := h.svc.SignContract(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// VerifyContract handles GET /api/verify/:code (public)
func (h *Handler) VerifyContract(c *gin.Context) {
	resp, err := h.svc.VerifyContract(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
