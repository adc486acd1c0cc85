package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
)

type TableConfig struct {
	NameWidth        int
	ValueWidth       int
	UnitWidth        int
	DescriptionWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:        24,
		ValueWidth:       24,
		UnitWidth:        8,
		DescriptionWidth: 44,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
	tmpl   *template.Template
}

type row struct {
	Name        string
	Value       string
	Unit        string
	Description string
}

type section struct {
	Title string
	Rows  []row
}

type view struct {
	Title    string
	Lines    []string
	Sections []section
}

const reportTemplate = `
{{.Title}}
{{range .Lines}}{{.}}
{{end}}{{range .Sections}}
=== {{.Title}} ===
{{separator}}
{{formatRow "Name" "Value" "Unit" "Description"}}
{{separator}}
{{range .Rows}}{{formatRow .Name .Value .Unit .Description}}
{{end}}{{separator}}
{{end}}`

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	r := &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}

	funcMap := template.FuncMap{
		"formatRow": func(name, value, unit, desc string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s |",
				r.config.NameWidth, name,
				r.config.ValueWidth, value,
				r.config.UnitWidth, unit,
				r.config.DescriptionWidth, desc)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", r.config.NameWidth+2),
				strings.Repeat("-", r.config.ValueWidth+2),
				strings.Repeat("-", r.config.UnitWidth+2),
				strings.Repeat("-", r.config.DescriptionWidth+2))
		},
	}
	r.tmpl = template.Must(template.New("report").Funcs(funcMap).Parse(reportTemplate))
	return r
}

// Handle renders an analysis result, with its fetch summary when it has one.
func (r *Reporter) Handle(result *domain.AnalysisResult) error {
	if result == nil {
		return errors.New("nothing to report")
	}
	report := result.Report

	v := view{
		Title: fmt.Sprintf("Step Activity Report (%d days)", report.TimeSpan.TotalDays),
	}
	if report.TimeSpan.TotalDays > 0 {
		v.Lines = append(v.Lines, fmt.Sprintf("Period: %s to %s",
			report.TimeSpan.Start.Format(domain.DateLayout),
			report.TimeSpan.End.Format(domain.DateLayout)))
	} else {
		v.Lines = append(v.Lines, "Period: no data")
	}
	if result.Fetch != nil && result.Fetch.Partial {
		v.Lines = append(v.Lines, fmt.Sprintf("Partial result: %d of %d requested days covered",
			len(result.Fetch.Covered), result.Fetch.RequestedDays()))
	}

	stats := report.DailyStatistics
	v.Sections = append(v.Sections, section{
		Title: "Daily Statistics",
		Rows: []row{
			{"Mean", formatFloat(stats.Mean), "steps", "Mean of daily totals"},
			{"Median", formatFloat(stats.Median), "steps", ""},
			{"Min", formatFloat(stats.Min), "steps", ""},
			{"Max", formatFloat(stats.Max), "steps", ""},
			{"Std", formatFloat(stats.Std), "steps", "Sample standard deviation"},
		},
	})

	peak := section{Title: "Peak Activity"}
	if report.Peak != nil {
		peak.Rows = append(peak.Rows, row{
			"Peak Interval", formatInterval(report.Peak.Interval), "",
			fmt.Sprintf("%s steps on average", formatFloat(report.Peak.Steps)),
		})
	} else {
		peak.Rows = append(peak.Rows, row{"Peak Interval", "n/a", "", "No interval has an observation"})
	}
	v.Sections = append(v.Sections, peak)

	patterns := report.WeekdayPatterns
	v.Sections = append(v.Sections, section{
		Title: "Weekday Patterns",
		Rows: []row{
			{"Weekday Average", formatFloat(patterns.WeekdayAverage), "steps", "Mean steps per weekday interval"},
			{"Weekend Average", formatFloat(patterns.WeekendAverage), "steps", "Mean steps per weekend interval"},
			{"Weekday Days", strconv.Itoa(patterns.WeekdayCount), "days", ""},
			{"Weekend Days", strconv.Itoa(patterns.WeekendCount), "days", ""},
		},
	})

	quality := report.DataQuality
	v.Sections = append(v.Sections, section{
		Title: "Data Quality",
		Rows: []row{
			{"Total Rows", strconv.Itoa(quality.TotalRows), "", ""},
			{"Missing Steps", strconv.Itoa(quality.MissingSteps), "", ""},
			{"Missing Intervals", strconv.Itoa(quality.MissingIntervals), "", "Samples without a valid interval"},
			{"Missing Days", strconv.Itoa(quality.MissingDays), "days", "Dates without a single reading"},
			{"Completeness", formatFloat(quality.DataCompleteness), "%", ""},
		},
	})

	if f := result.Fetch; f != nil {
		fetch := section{
			Title: "Fetch",
			Rows: []row{
				{"Run", f.RunID, "", ""},
				{"Platform", string(f.Vendor), "", f.Profile},
				{"Requested", strconv.Itoa(f.RequestedDays()), "days", fmt.Sprintf("%s to %s",
					f.Start.Format(domain.DateLayout), f.End.Format(domain.DateLayout))},
				{"Covered", strconv.Itoa(len(f.Covered)), "days", ""},
				{"Stop Reason", string(f.StopReason), "", ""},
			},
		}
		for _, s := range f.Skipped {
			fetch.Rows = append(fetch.Rows, row{"Skipped", s.Date.Format(domain.DateLayout), "", truncate(s.Reason, r.config.DescriptionWidth)})
		}
		v.Sections = append(v.Sections, fetch)
	}

	return r.execute(v)
}

func (r *Reporter) HandlePlatforms(platforms []domain.Platform) error {
	s := section{Title: "Platforms"}
	for _, p := range platforms {
		status := "unsupported"
		if p.Supported {
			status = "supported"
		}
		s.Rows = append(s.Rows, row{string(p.ID), status, "", truncate(p.Name+" "+p.Note, r.config.DescriptionWidth)})
	}
	return r.execute(view{Title: "Fitness Platforms", Sections: []section{s}})
}

func (r *Reporter) HandleProfiles(profiles []domain.Profile) error {
	if len(profiles) == 0 {
		return r.execute(view{Title: "Profiles", Lines: []string{"No profiles configured"}})
	}
	s := section{Title: "Profiles"}
	for _, p := range profiles {
		s.Rows = append(s.Rows, row{p.Name, string(p.Vendor), "", ""})
	}
	return r.execute(view{Title: "Configured Profiles", Sections: []section{s}})
}

func (r *Reporter) execute(v view) error {
	if err := r.tmpl.Execute(r.writer, v); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatInterval(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func truncate(s string, width int) string {
	s = strings.TrimSpace(s)
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
