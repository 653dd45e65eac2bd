package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/aquaflow/backend/internal/service"
	"github.com/aquaflow/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxDocumentSize = 10 << 20
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type QualityHandler struct {
	quality service.IQualityService
	logger  *zap.Logger
}

func NewQualityHandler(quality service.IQualityService, logger *zap.Logger) *QualityHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QualityHandler{quality: quality, logger: logger}
}

func (h *QualityHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/lab-reports/analyze", h.Analyze)

	suppliers := router.Group("/suppliers/:id")
	{
		suppliers.GET("/quality", h.GetSupplierQuality)
		suppliers.POST("/lab-reports", h.CreateReport)
		suppliers.GET("/lab-reports/export", h.ExportReports)
		suppliers.POST("/lab-reports/:reportId/document", h.UploadDocument)
	}
}

// Analyze scores a report without storing it
func (h *QualityHandler) Analyze(c *gin.Context) {
	var req types.LabReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := h.quality.Analyze(req.ToEngine(""))
	if err != nil {
		respondError(c, h.logger, err, "failed to analyze lab report")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (h *QualityHandler) GetSupplierQuality(c *gin.Context) {
	quality, err := h.quality.SupplierQuality(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "failed to load supplier quality")
		return
	}
	c.JSON(http.StatusOK, quality)
}

func (h *QualityHandler) CreateReport(c *gin.Context) {
	var req types.LabReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.quality.CreateReport(c.Request.Context(), req.ToEngine(c.Param("id")))
	if err != nil {
		respondError(c, h.logger, err, "failed to create lab report")
		return
	}
	c.JSON(http.StatusCreated, report)
}

// UploadDocument archives the certificate sent as the "file" form field
func (h *QualityHandler) UploadDocument(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("reportId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report id"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > maxDocumentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", maxDocumentSize)})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.quality.AttachDocument(c.Request.Context(), c.Param("id"), reportID, header.Filename, contentType, file, header.Size)
	if err != nil {
		respondError(c, h.logger, err, "failed to upload lab report document")
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ExportReports renders the workbook fully before writing so failures can
// still be reported as JSON
func (h *QualityHandler) ExportReports(c *gin.Context) {
	supplierID := c.Param("id")

	var buf bytes.Buffer
	if err := h.quality.ExportReports(c.Request.Context(), supplierID, &buf); err != nil {
		respondError(c, h.logger, err, "failed to export lab reports")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="lab-reports-%s.xlsx"`, supplierID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
