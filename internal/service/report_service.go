package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"

	"github.com/noah-isme/checkin-go-api/internal/dto"
	"github.com/noah-isme/checkin-go-api/internal/models"
)

// ReportService renders an HTML summary of an event's aggregation outputs.
// It holds only the parsed template, no per-event state, and is constructed
// and injected like any other dependency.
type ReportService interface {
	RenderEventReport(ctx context.Context, actor models.User, eventID uint) ([]byte, error)
}

type reportService struct {
	events    EventService
	analytics AnalyticsService
	template  *template.Template
	logger    zerolog.Logger
}

const eventReportTemplate = `<!DOCTYPE html>
<html>
<head><title>{{.Event.EventName}} - Check-In Report</title></head>
<body>
<h1>{{.Event.EventName}}</h1>
<p>{{.Event.Location}}</p>
<table>
<tr><td>Total check-ins</td><td>{{.Stats.TotalCheckIns}}</td></tr>
<tr><td>Registered participants</td><td>{{.Stats.TotalParticipants}}</td></tr>
<tr><td>Distinct checked-in</td><td>{{.Stats.CheckedIn}}</td></tr>
<tr><td>Invited</td><td>{{.Stats.Categories.Invited}}</td></tr>
<tr><td>Registered walk-in</td><td>{{.Stats.Categories.RegisteredWalkIn}}</td></tr>
<tr><td>Adult population walk-in</td><td>{{.Stats.Categories.AdultPopulation}}</td></tr>
</table>
<h2>Gender</h2>
<ul>{{range .Stats.Gender}}<li>{{.Name}}: {{.Count}}</li>{{end}}</ul>
<h2>Age groups</h2>
<ul>{{range .Stats.AgeGroups}}<li>{{.Name}}: {{.Count}}</li>{{end}}</ul>
</body>
</html>
`

// NewReportService constructs the report renderer.
func NewReportService(events EventService, analytics AnalyticsService, logger zerolog.Logger) (ReportService, error) {
	parsed, err := template.New("event_report").Parse(eventReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}

	return &reportService{
		events:    events,
		analytics: analytics,
		template:  parsed,
		logger:    logger.With().Str("component", "report_service").Logger(),
	}, nil
}

func (s *reportService) RenderEventReport(ctx context.Context, actor models.User, eventID uint) ([]byte, error) {
	event, err := s.events.Get(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	stats, err := s.analytics.EventStatistics(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := struct {
		Event dto.EventDetailResponse
		Stats dto.EventStatisticsResponse
	}{Event: event, Stats: stats}

	if err := s.template.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render event report: %w", err)
	}

	return buf.Bytes(), nil
}
