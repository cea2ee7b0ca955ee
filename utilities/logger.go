package utilities

import (
	"log"
	"os"
	"time"
)

var (
	InfoLogger  *log.Logger
	ErrorLogger *log.Logger
	WarnLogger  *log.Logger
	DebugLogger *log.Logger

	debugEnabled bool
)

// InitLogger inicializa os loggers com prefixos coloridos. O logger de debug
// só emite saída quando LOG_DEBUG=true está definido no ambiente.
func InitLogger() {
	flags := log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile

	InfoLogger = log.New(os.Stdout, "\033[32m[INFO]\033[0m ", flags)
	ErrorLogger = log.New(os.Stderr, "\033[31m[ERROR]\033[0m ", flags)
	WarnLogger = log.New(os.Stdout, "\033[33m[WARN]\033[0m ", flags)
	DebugLogger = log.New(os.Stdout, "\033[36m[DEBUG]\033[0m ", flags)

	debugEnabled = os.Getenv("LOG_DEBUG") == "true"
}

// ensure garante que os loggers existem mesmo se InitLogger não foi chamado
// (por exemplo, em testes de pacotes isolados).
func ensure() {
	if InfoLogger == nil {
		InitLogger()
	}
}

// LogRequest registra informações sobre a requisição HTTP
func LogRequest(method, path, remoteAddr string, status int, duration time.Duration) {
	ensure()
	InfoLogger.Printf("%s %s %s %d %v", method, path, remoteAddr, status, duration)
}

// LogError registra um erro com o contexto em que ocorreu
func LogError(err error, context string) {
	ensure()
	ErrorLogger.Printf("%s: %v", context, err)
}

// LogWarn registra condições anormais que não interrompem o fluxo
func LogWarn(format string, v ...interface{}) {
	ensure()
	WarnLogger.Printf(format, v...)
}

// LogDebug registra informações de debug
func LogDebug(format string, v ...interface{}) {
	ensure()
	if !debugEnabled {
		return
	}
	DebugLogger.Printf(format, v...)
}

// LogInfo registra informações gerais
func LogInfo(format string, v ...interface{}) {
	ensure()
	InfoLogger.Printf(format, v...)
}
