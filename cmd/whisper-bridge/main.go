package main

import (
	"fmt"
	"os"

	"whisper-bridge/cmd/whisper-bridge/cmd"
	"whisper-bridge/internal/config"

	// Engines register themselves in init
	_ "whisper-bridge/internal/app/api/openai/whisper"
	_ "whisper-bridge/internal/app/api/whisper_cpp"
	_ "whisper-bridge/internal/app/api/whisper_server"
	_ "whisper-bridge/internal/app/api/whispercpp_go"
)

func main() {
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}
	os.Exit(cmd.Execute())
}
