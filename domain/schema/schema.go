// Package schema defines the closed vocabulary of canonical job columns, the
// header aliases that resolve to them, and the month-name lookup used to build
// period keys.
package schema

// Canonical column names. The set is closed: headers that match none of the
// aliases below pass through under a sanitized name.
const (
	Year          = "AÑO"
	Month         = "MES"
	Client        = "CLIENTE"
	JobName       = "NOMBRE ENCARGO"
	Locality      = "LOCALIDAD"
	ClientType    = "TIPO DE CLIENTE"
	JobType       = "TIPO DE TRABAJO"
	Acquisition   = "CAPTACIÓN CLIENTE"
	Price         = "MI PRECIO"
	Status        = "ESTADO"
	DeliveryDate  = "FECHA ENTREGA"
	Hours         = "HORAS DEDICADAS"
	PricePerHour  = "PRECIO/HORA"
	IntakePeriod  = "YM_ENCARGO"
	UnknownColumn = "UNKNOWN"
)

// Non-canonical names the loaders still recognise.
const (
	LegacyAcquisition = "CAPTACIÓN DE CLIENTE"
	SentFlag          = "ENVIADO"
)

// Sheet names and the fixed header position of the studio workbook.
const (
	CompletedJobsSheet  = "TRABAJOS REALIZADOS"
	InProgressJobsSheet = "TRABAJOS EN CURSO"
	HeaderRowIndex      = 3
)

// Alias lists the known spellings of one canonical column.
type Alias struct {
	Canonical string
	Spellings []string
}

// AliasTable is the header alias table in declaration order. Resolution
// ranks the flattened spellings by length, so order here only breaks ties.
var AliasTable = []Alias{
	{Year, []string{"ANYO", "AÑO", "AÑO ", "ANIO", "ANIO "}},
	{Month, []string{"MES DE ENCARGO", "MES ENCARGO", "MES"}},
	{Client, []string{"CLIENTE", "CLIENTES"}},
	{JobName, []string{"NOMBRE ENCARGO", "ENCARGO", "TRABAJO", "NOMBRE TRABAJO"}},
	{Locality, []string{"LOCALIDAD", "MUNICIPIO", "CIUDAD", "POBLACION", "POBLACIÓN"}},
	{ClientType, []string{"TIPO DE CLIENTE", "TIPO DE CLIENTE ", "TIPO DE CLIEN..."}},
	{JobType, []string{"TIPO DE TRABAJO", "TIPO TRABAJO"}},
	{Acquisition, []string{
		"CAPTACIÓN CLIENTE", "CAPTACIÓN DE CLIENTE", "CAPTACION CLIENTE",
		"CAPTACION DE CLIENTE", "CAPTACIN DE CLIENTE", "CAPTACIÓN", "CAPTACION",
	}},
	{Price, []string{"MI PRECIO", "PRECIO", "IMPORTE", "MI PRECIO PRECIO"}},
	{Status, []string{"ESTADO", "PAGADO", "COBRADO", "ESTADO PAGO"}},
	{DeliveryDate, []string{"FECHA ENTREGA", "FECHA ENTREGA ", "FECHA"}},
	{Hours, []string{"HORAS DEDICADAS", "HORAS", "H DEDICADAS"}},
	{PricePerHour, []string{"PRECIO/HORA", "PRECIO HORA", "€/H", "EUROS/HORA"}},
}

// Months maps upper-case Spanish month names to month numbers. SETIEMBRE is
// the historical spelling of the ninth month.
var Months = map[string]int{
	"ENERO":      1,
	"FEBRERO":    2,
	"MARZO":      3,
	"ABRIL":      4,
	"MAYO":       5,
	"JUNIO":      6,
	"JULIO":      7,
	"AGOSTO":     8,
	"SEPTIEMBRE": 9,
	"SETIEMBRE":  9,
	"OCTUBRE":    10,
	"NOVIEMBRE":  11,
	"DICIEMBRE":  12,
}

// MonthSpellingFixes folds variant month spellings into the canonical one.
var MonthSpellingFixes = map[string]string{
	"SETIEMBRE": "SEPTIEMBRE",
}
