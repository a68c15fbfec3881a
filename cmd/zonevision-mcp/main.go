package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/zonevision/internal/imaging"
	"github.com/ironsheep/zonevision/internal/server"
	"github.com/ironsheep/zonevision/internal/vision"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("zonevision-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("zonevision-mcp - MCP server for the tape zone vision pipeline")
			fmt.Println()
			fmt.Println("Usage: zonevision-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			for _, env := range [][2]string{
				{"ZONEVISION_LOG_LEVEL=debug", "Enable debug logging"},
				{"ZONEVISION_NATIVE_SIZE=1", "Process frames at their stored size instead of 320x240"},
				{vision.EnvThresholdMin + "=Y,U,V", "Lower threshold bound"},
				{vision.EnvThresholdMax + "=Y,U,V", "Upper threshold bound"},
				{vision.EnvBlurRadius + "=R", "Box blur radius before thresholding"},
				{vision.EnvErosionIterations + "=N", "Erosion passes"},
				{vision.EnvOuterBoundary + "=F", "Outer cut-line as a fraction of height"},
				{vision.EnvInnerBoundary + "=F", "Inner cut-line as a fraction of height"},
				{vision.EnvInitialStage + "=NAME", "Initial debug stage (raw, mask, annotated)"},
				{vision.EnvHoldOnEmpty + "=BOOL", "Keep the last position on empty frames"},
			} {
				fmt.Printf("  %-38s %s\n", env[0], env[1])
			}
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("ZONEVISION_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("ZoneVision MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	}

	cfg, err := vision.ConfigFromEnv(nil)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	pipeline, err := vision.New(cfg)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	cache := imaging.NewFrameCache(vision.DefaultStreamWidth, vision.DefaultStreamHeight)
	if os.Getenv("ZONEVISION_NATIVE_SIZE") != "" {
		cache = imaging.NewFrameCache(0, 0)
	}

	srv := server.New(pipeline, cache)
	srv.Debug = debug
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
