package leaderboardhandlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xuri/excelize/v2"
)

// ExportCategoryRanking handles GET /categories/{categoryID}/ranking/export,
// writing the ranking as an xlsx workbook.
func (h *LeaderboardHandlers) ExportCategoryRanking(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category id"})
		return
	}

	view, err := h.service.GetCategoryRanking(r.Context(), categoryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Ranking"
	index, err := f.NewSheet(sheet)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Position", "Participant", "Total", "Workouts Finalized"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	for rowIdx, entry := range view.Entries {
		row := rowIdx + 2
		values := []any{entry.Position, entry.Participant.Name, entry.Total, entry.WorkoutsFinalized}
		if !entry.HasScore {
			values[0] = "-"
			values[2] = "-"
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				h.respondError(w, r, err)
				return
			}
		}
	}

	filename := fmt.Sprintf("ranking-%s.xlsx", sanitizeFilename(view.CategoryName))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to stream xlsx export",
			slog.Int64("category_id", categoryID),
			slog.Any("error", err),
		)
	}
}

func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == ' ', r == '-', r == '_':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "category"
	}
	return string(out)
}
