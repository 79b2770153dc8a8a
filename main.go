package main

import (
	"fmt"
	"log"
	"os"

	"github.com/NazarSenchuk/receipt-processor/config"
	"github.com/NazarSenchuk/receipt-processor/server"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: receipt-processor <command>")
		fmt.Println("Commands:")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Config initialization failed: %v", err)
	}
	if cfg == nil {
		log.Fatalf("config is empty")
	}

	switch os.Args[1] {
	case "server":

		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Receipt processor starting up...")

		srv, err := server.NewServer(cfg)
		if err != nil {
			log.Fatalf("Server setup failed: %v", err)
		}

		err = srv.Run()
		if err != nil {
			log.Fatalf("Server startup failed: %v", err)
		}

		log.Println("Shutdown complete")

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		fmt.Println("Usage: receipt-processor <command>")
		fmt.Println("Commands:")
		fmt.Println("  server    Start the application server")
		os.Exit(1)
	}
}
