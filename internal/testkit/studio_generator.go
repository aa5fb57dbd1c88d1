package testkit

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"jobmetrics/domain/schema"

	"github.com/xuri/excelize/v2"
)

// StudioGeneratorConfig configures the synthetic studio workbook
type StudioGeneratorConfig struct {
	CompletedJobs  int     `json:"completed_jobs"`
	InProgressJobs int     `json:"in_progress_jobs"`
	StartYear      int     `json:"start_year"`
	Years          int     `json:"years"`
	MinPrice       float64 `json:"min_price"`
	MaxPrice       float64 `json:"max_price"`
	ZeroHoursRate  float64 `json:"zero_hours_rate"` // share of jobs logged with 0 hours
	Seed           int64   `json:"seed"`
}

// DefaultStudioConfig returns a small two-year workbook
func DefaultStudioConfig() StudioGeneratorConfig {
	return StudioGeneratorConfig{
		CompletedJobs:  60,
		InProgressJobs: 8,
		StartYear:      2023,
		Years:          2,
		MinPrice:       150,
		MaxPrice:       6000,
		ZeroHoursRate:  0.05,
		Seed:           42,
	}
}

// StudioJob is one generated workbook row before layout
type StudioJob struct {
	Year       int
	Month      int
	Client     string
	JobName    string
	Locality   string
	ClientType string
	JobType    string
	Channel    string
	Price      float64
	Hours      float64
	Status     string
	Delivered  time.Time
	Sent       bool
}

// Sheet is a named grid written verbatim into a workbook
type Sheet struct {
	Name string
	Rows [][]interface{}
}

var (
	monthNames = []string{
		"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
		"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
	}
	clients     = []string{"Ana Pérez", "Construcciones Soria", "Ayuntamiento Tudela", "Luis Gil", "Inmobiliaria Ebro", "Marta Ruiz", "Bodegas Ribera", "Comunidad Calle Mayor"}
	localities  = []string{"Tudela", "Pamplona", "Logroño", "Zaragoza"}
	clientTypes = []string{"PARTICULAR", "EMPRESA", "ADMINISTRACIÓN"}
	jobTypes    = []string{"PROYECTO BÁSICO", "REFORMA", "CERTIFICADO", "TASACIÓN", "LEGALIZACIÓN"}
	channels    = []string{"RECOMENDACIÓN", "WEB", "CLIENTE RECURRENTE", "REDES SOCIALES"}
	statuses    = []string{"PAGADO", "PENDIENTE", "FACTURADO"}
)

// CompletedHeader is the header row of the completed jobs sheet.
var CompletedHeader = []string{
	"AÑO", "MES", "CLIENTE", "NOMBRE ENCARGO", "LOCALIDAD", "TIPO DE CLIENTE",
	"TIPO DE TRABAJO", "CAPTACIÓN CLIENTE", "MI PRECIO", "ESTADO", "FECHA ENTREGA",
	"HORAS DEDICADAS", "PRECIO/HORA",
}

// InProgressHeader is the header row of the in-progress sheet; it uses the
// legacy acquisition spelling and carries the ENVIADO flag.
var InProgressHeader = []string{
	"AÑO", "MES", "CLIENTE", "NOMBRE ENCARGO", "LOCALIDAD", "TIPO DE CLIENTE",
	"TIPO DE TRABAJO", "CAPTACIÓN DE CLIENTE", "MI PRECIO", "ESTADO", "ENVIADO",
}

// StudioWorkbookGenerator produces deterministic studio workbooks
type StudioWorkbookGenerator struct {
	config StudioGeneratorConfig
	rng    *rand.Rand
}

// NewStudioWorkbookGenerator creates a generator seeded from config
func NewStudioWorkbookGenerator(config StudioGeneratorConfig) *StudioWorkbookGenerator {
	return &StudioWorkbookGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateJobs returns n jobs in (year, month) order, the way the studio
// keeps its sheet.
func (g *StudioWorkbookGenerator) GenerateJobs(n int) []StudioJob {
	jobs := make([]StudioJob, 0, n)
	months := g.config.Years * 12
	if months <= 0 {
		months = 12
	}
	for i := 0; i < n; i++ {
		slot := i * months / max(n, 1)
		job := StudioJob{
			Year:       g.config.StartYear + slot/12,
			Month:      slot%12 + 1,
			Client:     clients[g.rng.Intn(len(clients))],
			JobName:    fmt.Sprintf("Encargo %03d", i+1),
			Locality:   localities[g.rng.Intn(len(localities))],
			ClientType: clientTypes[g.rng.Intn(len(clientTypes))],
			JobType:    jobTypes[g.rng.Intn(len(jobTypes))],
			Channel:    channels[g.rng.Intn(len(channels))],
			Status:     statuses[g.rng.Intn(len(statuses))],
			Sent:       g.rng.Intn(2) == 0,
		}
		job.Price = math.Round(g.config.MinPrice + g.rng.Float64()*(g.config.MaxPrice-g.config.MinPrice))
		if g.rng.Float64() >= g.config.ZeroHoursRate {
			job.Hours = math.Round((2+g.rng.Float64()*60)*2) / 2
		}
		intake := time.Date(job.Year, time.Month(job.Month), 1, 0, 0, 0, 0, time.UTC)
		job.Delivered = intake.AddDate(0, g.rng.Intn(3), g.rng.Intn(28))
		jobs = append(jobs, job)
	}
	return jobs
}

// CompletedSheet lays jobs out below three title rows with AÑO and MES
// written only on the first row of each block, as merged cells would be.
func CompletedSheet(jobs []StudioJob) Sheet {
	rows := titleRows(schema.CompletedJobsSheet)
	rows = append(rows, stringsRow(CompletedHeader))
	prevYear, prevMonth := 0, 0
	for _, j := range jobs {
		year, month := mergedCells(j, prevYear, prevMonth)
		prevYear, prevMonth = j.Year, j.Month
		var rate interface{}
		if j.Hours > 0 {
			rate = math.Round(j.Price/j.Hours*100) / 100
		}
		rows = append(rows, []interface{}{
			year, month, j.Client, j.JobName, j.Locality, j.ClientType, j.JobType,
			j.Channel, j.Price, j.Status, j.Delivered, j.Hours, rate,
		})
	}
	return Sheet{Name: schema.CompletedJobsSheet, Rows: rows}
}

// InProgressSheet lays out jobs that have no delivery date yet.
func InProgressSheet(jobs []StudioJob) Sheet {
	rows := titleRows(schema.InProgressJobsSheet)
	rows = append(rows, stringsRow(InProgressHeader))
	prevYear, prevMonth := 0, 0
	for _, j := range jobs {
		year, month := mergedCells(j, prevYear, prevMonth)
		prevYear, prevMonth = j.Year, j.Month
		rows = append(rows, []interface{}{
			year, month, j.Client, j.JobName, j.Locality, j.ClientType, j.JobType,
			j.Channel, j.Price, "EN CURSO", j.Sent,
		})
	}
	return Sheet{Name: schema.InProgressJobsSheet, Rows: rows}
}

// Workbook generates both sheets and returns the .xlsx bytes.
func (g *StudioWorkbookGenerator) Workbook() ([]byte, error) {
	completed := g.GenerateJobs(g.config.CompletedJobs)
	inProgress := g.GenerateJobs(g.config.InProgressJobs)
	return WriteWorkbook(CompletedSheet(completed), InProgressSheet(inProgress))
}

// WriteWorkbook writes the sheets, in order, into a new workbook.
func WriteWorkbook(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("at least one sheet is required")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", s.Name, err)
		}
		for r, row := range s.Rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := row
			if err := f.SetSheetRow(s.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d of %q: %w", r+1, s.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func titleRows(title string) [][]interface{} {
	return [][]interface{}{
		{"ESTUDIO DE ARQUITECTURA"},
		{title},
		{},
	}
}

func stringsRow(cells []string) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func mergedCells(j StudioJob, prevYear, prevMonth int) (interface{}, interface{}) {
	var year, month interface{}
	if j.Year != prevYear {
		year = j.Year
	}
	if j.Year != prevYear || j.Month != prevMonth {
		month = monthNames[j.Month-1]
	}
	return year, month
}
