package config

import "github.com/postcode-geocoder/internal/refdata"

// Reference source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Settings is the full configuration surface of the geocoder. Every
// field has an environment variable and a default; CLI flags override
// on top.
type Settings struct {
	// Reference table
	ReferenceSource  string // csv or postgres
	ReferencePath    string // explicit file, overrides discovery
	ReferenceDir     string
	ReferencePattern string
	ReferenceTable   string // postgres table name
	PostgresDSN      string
	Columns          refdata.Columns

	// Batch input
	SourceColumn string
	Extract      bool
	Workers      int

	// Coordinates: true when X/Y are longitude/latitude rather than
	// easting/northing.
	LatLon bool
	XName  string
	YName  string

	// Web server
	ListenAddr string

	Debug bool
}

// FromEnv builds Settings from the environment, loading .env first.
func FromEnv() Settings {
	LoadEnv()

	cols := refdata.DefaultColumns()
	cols.Primary = GetEnv("REF_COL_PRIMARY", cols.Primary)
	cols.Alias1 = GetEnv("REF_COL_ALIAS1", cols.Alias1)
	cols.Alias2 = GetEnv("REF_COL_ALIAS2", cols.Alias2)
	cols.X = GetEnv("REF_COL_X", cols.X)
	cols.Y = GetEnv("REF_COL_Y", cols.Y)

	return Settings{
		ReferenceSource:  GetEnv("REFERENCE_SOURCE", SourceCSV),
		ReferencePath:    GetEnv("REFERENCE_PATH", ""),
		ReferenceDir:     GetEnv("REFERENCE_DIR", "."),
		ReferencePattern: GetEnv("REFERENCE_PATTERN", "*postcode*.csv"),
		ReferenceTable:   GetEnv("REFERENCE_TABLE", "postcode_lookup"),
		PostgresDSN:      postgresDSN(),
		Columns:          cols,

		SourceColumn: GetEnv("SOURCE_COLUMN", "address"),
		Extract:      GetEnvBool("EXTRACT", true),
		Workers:      GetEnvInt("WORKERS", 1),

		LatLon: GetEnvBool("COORDS_LATLON", false),
		XName:  GetEnv("OUT_COL_X", "easting"),
		YName:  GetEnv("OUT_COL_Y", "northing"),

		ListenAddr: GetEnv("LISTEN_ADDR", "localhost:8080"),
		Debug:      GetEnvBool("DEBUG", false),
	}
}

func postgresDSN() string {
	host := GetEnv("PGHOST", "localhost")
	port := GetEnv("PGPORT", "5432")
	user := GetEnv("PGUSER", "postgres")
	password := GetEnv("PGPASSWORD", "")
	dbname := GetEnv("PGDATABASE", "geocoder")

	return "host=" + host + " port=" + port + " user=" + user +
		" password=" + password + " dbname=" + dbname + " sslmode=disable"
}
