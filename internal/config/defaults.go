package config

import "time"

const (
	// DefaultProjectPath is the default workspace root
	DefaultProjectPath = "."
	// DefaultTestFolder is the folder test declaration files live under
	DefaultTestFolder = "PTst"
	// DefaultFilePattern matches test declaration files relative to the test folder
	DefaultFilePattern = "Test*.p"
	// DefaultExtension is the extension a watched document must carry
	DefaultExtension = ".p"
	// DefaultKeyword starts a test declaration line
	DefaultKeyword = "test"
	// DefaultChecker is the checker binary
	DefaultChecker = "p"
	// DefaultIterations is passed to the checker with -i
	DefaultIterations = 1000
	// DefaultOutputDir holds one checker output directory per case
	DefaultOutputDir = "PCheckerOutput"
	// DefaultLogFile is the checker log written inside each case output directory
	DefaultLogFile = "check.log"
	// DefaultReservedChannel tags an execution channel owned by a run
	DefaultReservedChannel = "RunTask"
	// DefaultShell interprets the checker command line
	DefaultShell = "bash"
	// DefaultCaseTimeout bounds a single checker invocation
	DefaultCaseTimeout = 30 * time.Minute
	// DefaultOrder runs cases in declaration order
	DefaultOrder = OrderDeclaration
	// DefaultStateDir keeps the last report under the project
	DefaultStateDir = ".ptc"
	// DefaultReportFile is the last report file name
	DefaultReportFile = "last-run.json"
	// DefaultConfigFile is read from the project root when present
	DefaultConfigFile = "ptc.yaml"
)

const (
	// OrderDeclaration runs requested items in caller order and cases in declaration order
	OrderDeclaration = "declaration"
	// OrderLIFO pops cases from the end of the expanded queue
	OrderLIFO = "lifo"
)

// DefaultExcludeGlobs are skipped when searching for test files
var DefaultExcludeGlobs = []string{
	"**/Build/*",
	"**/build/**",
}
