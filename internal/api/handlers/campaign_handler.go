package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hirevox/hirevox/internal/services"
	"github.com/hirevox/hirevox/internal/utils"
)

type CampaignHandler struct {
	campaigns services.CampaignService
}

func NewCampaignHandler(campaigns services.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

type createCampaignReq struct {
	Title          string `json:"title" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req createCampaignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "CampaignHandler.Create", "title and job_description are required", err))
		return
	}

	out, err := h.campaigns.Create(c.Request.Context(), req.Title, req.JobDescription)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *CampaignHandler) Get(c *gin.Context) {
	out, err := h.campaigns.Get(c.Request.Context(), c.Param("campaign_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *CampaignHandler) List(c *gin.Context) {
	out, err := h.campaigns.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": out})
}

// UploadCandidates accepts a multipart upload under the "file" field.
func (h *CampaignHandler) UploadCandidates(c *gin.Context) {
	const op = "CampaignHandler.UploadCandidates"

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file is required", err))
		return
	}

	f, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "failed to open upload", err))
		return
	}
	defer f.Close()

	n, err := h.campaigns.UploadCandidates(c.Request.Context(), c.Param("campaign_id"), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": n})
}

func (h *CampaignHandler) ListCandidates(c *gin.Context) {
	out, err := h.campaigns.ListCandidates(c.Request.Context(), c.Param("campaign_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": out})
}
