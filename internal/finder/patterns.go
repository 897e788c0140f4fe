package finder

// ReportType selects which pattern sets drive the search.
type ReportType string

const (
	ReportTypeCoverage    ReportType = "coverage"
	ReportTypeTestResults ReportType = "test_results"
)

// coveragePatterns match files produced by coverage tools.
var coveragePatterns = []string{
	"*.clover",
	"*.codecov.*",
	"*.gcov",
	"*.lcov",
	"*.lst",
	"*coverage*.*",
	"*Jacoco*.xml",
	"clover.xml",
	"cobertura.xml",
	"codecov-result.json",
	"codecov.*",
	"cover.out",
	"coverage-final.json",
	"excoveralls.json",
	"gcov.info",
	"jacoco*.xml",
	"lcov.dat",
	"pylcov.dat",
	"lcov.info",
	"luacov.report.out",
	"naxsi.info",
	"nosetests.xml",
	"report.xml",
	"test_cov.xml",
}

// testResultsPatterns match JUnit-style test result files.
var testResultsPatterns = []string{
	"*junit*.xml",
	"*test*.xml",
	// the actual JUnit (Java) prefixes the tests with "TEST-"
	"*TEST-*.xml",
}

// coverageExcludedPatterns are false positives of coveragePatterns:
// sources, build products and tool metadata that will never parse as
// coverage.
var coverageExcludedPatterns = []string{
	"*.am",
	"*.bash",
	"*.bat",
	"*.bw",
	"*.cfg",
	"*.class",
	"*.cmake",
	"*.conf",
	"*.coverage",
	"*.cp",
	"*.cpp",
	"*.crt",
	"*.css",
	"*.csv",
	"*.data",
	"*.db",
	"*.dox",
	"*.ec",
	"*.egg",
	"*.el",
	"*.env",
	"*.erb",
	"*.exe",
	"*.ftl",
	"*.gif",
	".git*",
	"*.gradle",
	"*.gz",
	"*.h",
	"*.html",
	"*.in",
	"*.jade",
	"*.jar*",
	"*.jpeg",
	"*.jpg",
	"*.js",
	"*.less",
	"*.log",
	"*.m4",
	"*.mak*",
	"*.md",
	".nvmrc",
	"*.o",
	"*.p12",
	"*.pem",
	"*.png",
	"*.pom*",
	"*.profdata",
	"*.proto",
	"*.ps1",
	"*.pth",
	"*.py",
	"*.pyc",
	"*.pyo",
	"*.rb",
	"*.rsp",
	"*.rst",
	"*.ru",
	"*.sbt",
	"*.scss",
	"*.serialized",
	"*.sh",
	"*.snapshot",
	"*.sql",
	"*.svg",
	"*.tar.tz",
	"*.template",
	"*.ts",
	"*.whl",
	"*.xcconfig",
	"*.xcoverage.*",
	"*.yml",
	"*.yaml",
	"*/classycle/report.xml",
	"*codecov.yml",
	"codecov.yaml",
	"*~",
	".*coveragerc",
	".coverage*",
	"coverage-summary.json",
	"codecov.SHA256SUM",
	"codecov.SHA256SUM.sig",
	"createdFiles.lst",
	"fullLocaleNames.lst",
	"include.lst",
	"inputFiles.lst",
	"phpunit-code-coverage.xml",
	"phpunit-coverage.xml",
	"remapInstanbul.coverage*.json",
	"scoverage.measurements.*",
	"test_*_coverage.txt",
	"test-result-*-codecoverage.json",
	"testrunner-coverage*",
	"*.*js",
	"*.map",
	"*.egg-info",
	".ds_store",
	"*.zip",
}

// testResultsExcludedPatterns: anything that looks like coverage is
// not a test result, plus the coverage exclusions.
var testResultsExcludedPatterns = append(
	append([]string{}, coveragePatterns...), coverageExcludedPatterns...)

// defaultIgnoredDirs prune directory descent entirely.
var defaultIgnoredDirs = []string{
	"vendor",
	"bower_components",
	".circleci",
	"conftest_*.c.gcov",
	".egg-info*",
	".env",
	".envs",
	".git",
	".go",
	".hg",
	".map",
	".marker",
	".tox",
	".venv",
	".venvs",
	".virtualenv",
	".virtualenvs",
	".yarn",
	".yarn-cache",
	"__pycache__",
	"env",
	"envs",
	"htmlcov",
	"js/generated/coverage",
	"node_modules",
	"venv",
	"venvs",
	"virtualenv",
	"virtualenvs",
	"jspm_packages",
	".nyc_output",
}
