package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/noah-isme/instructor-directory-api/internal/models"
	appErrors "github.com/noah-isme/instructor-directory-api/pkg/errors"
	"github.com/noah-isme/instructor-directory-api/pkg/export"
	"github.com/noah-isme/instructor-directory-api/pkg/postcode"
)

var directoryExportHeaders = []string{"fino", "name", "gender", "email", "website", "postcodes", "status", "priority", "offer", "lat", "lng"}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// DirectoryExport is a rendered directory listing.
type DirectoryExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportDirectory renders the instructors with the given active flag as CSV or PDF.
func (s *InstructorService) ExportDirectory(ctx context.Context, active bool, rawFormat string) (*DirectoryExport, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	start := time.Now()
	rows, err := s.repo.ListAll(ctx, active)
	s.metrics.ObserveDBQuery("export", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list instructors")
	}

	data := export.Dataset{
		Title:   "Instructor directory",
		Headers: directoryExportHeaders,
		Rows:    make([][]string, 0, len(rows)),
	}
	if !active {
		data.Title = "Instructor directory (inactive)"
	}
	for _, row := range rows {
		if row.Postcodes != nil {
			row.PostcodesDisplay = postcode.FormatCoverage(*row.Postcodes)
		}
		data.Rows = append(data.Rows, exportRow(row))
	}

	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(data)
	default:
		body, err = s.csv.Render(data)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}
	return &DirectoryExport{
		Filename:    fmt.Sprintf("instructors-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func exportRow(row models.Instructor) []string {
	return []string{
		strconv.FormatInt(row.Fino, 10),
		row.Name,
		row.Gender,
		row.Email,
		derefString(row.Website),
		row.PostcodesDisplay,
		row.Status.String(),
		strconv.FormatBool(row.Priority),
		strconv.FormatBool(row.Offer),
		formatCoordinate(row.Lat),
		formatCoordinate(row.Lng),
	}
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
