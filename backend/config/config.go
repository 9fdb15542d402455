package config

import (
	"time"
)

type Target struct {
	BaseURL       string   `ini:"baseUrl" yaml:"baseUrl" comment:"redeem URL; the token is appended, or substituted for {token}"`
	InvalidMarker string   `ini:"invalidMarker" yaml:"invalidMarker" comment:"text the page shows for an unknown code"`
	AcceptSignals []string `ini:"acceptSignals" yaml:"acceptSignals" comment:"comma separated, matched case-insensitively"`
	RulesFile     string   `ini:"rulesFile" yaml:"rulesFile" comment:"optional JSON verdict rules merged into the defaults"`
}

type Browser struct {
	Path            string        `ini:"path" yaml:"path" comment:"Chrome executable, empty for auto-detect"`
	Headless        bool          `ini:"headless" yaml:"headless"`
	PageLoadTimeout time.Duration `ini:"pageLoadTimeout" yaml:"pageLoadTimeout" comment:"per page timeout, default:10s"`
	SettleDelay     time.Duration `ini:"settleDelay" yaml:"settleDelay" comment:"wait after body is ready for scripts to render, default:2s"`
	ViewportWidth   int           `ini:"viewportWidth" yaml:"viewportWidth"`
	ViewportHeight  int           `ini:"viewportHeight" yaml:"viewportHeight"`
	StartupAttempts int           `ini:"startupAttempts" yaml:"startupAttempts" comment:"browser launch attempts per worker"`
	Verbose         bool          `ini:"verbose" yaml:"verbose" comment:"log browser protocol errors"`
}

type Run struct {
	Workers         int           `ini:"workers" yaml:"workers" comment:"browser windows, default:4"`
	TokensPerWorker int           `ini:"tokensPerWorker" yaml:"tokensPerWorker" comment:"default:10000"`
	TokenLength     int           `ini:"tokenLength" yaml:"tokenLength"`
	Alphabet        string        `ini:"alphabet" yaml:"alphabet"`
	Seed            uint64        `ini:"seed" yaml:"seed" comment:"0 picks a random seed"`
	Delay           time.Duration `ini:"delay" yaml:"delay" comment:"pause after every attempt, default:0.5s"`
	MaxRate         float64       `ini:"maxRate" yaml:"maxRate" comment:"attempts per second across all workers, 0 disables"`
	ProgressEvery   int           `ini:"progressEvery" yaml:"progressEvery" comment:"completed attempts between progress lines"`
	ResultsDir      string        `ini:"resultsDir" yaml:"resultsDir"`
}

type Log struct {
	Level string `ini:"level" yaml:"level" comment:"debug,info,warn,error"`
	Dir   string `ini:"dir" yaml:"dir" comment:"also write logs to this directory"`
}

type Config struct {
	Target  Target
	Browser Browser
	Run     Run
	Log     Log
}
