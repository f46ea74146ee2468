package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"coinpulse/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportWithdrawals writes the current withdrawal list to an .xlsx download
// for the finance side. Filters by status when given.
func (h *APIHandler) ExportWithdrawals(c *gin.Context) {
	var withdrawals []models.Withdrawal
	query := h.db.Preload("Project").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&withdrawals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Withdrawals"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Reference", "Project", "Amount (USD)", "Wallet", "Status", "Processed At", "Created At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for i, w := range withdrawals {
		row := i + 2
		processedAt := ""
		if w.ProcessedAt != nil {
			processedAt = w.ProcessedAt.Format(time.RFC3339)
		}
		values := []interface{}{
			w.Reference,
			w.Project.Handle,
			w.AmountUsd,
			w.WalletAddr,
			w.Status,
			processedAt,
			w.CreatedAt.Format(time.RFC3339),
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("withdrawals_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[api] withdrawal export failed: %v", err)
	}
}
