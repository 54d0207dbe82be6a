package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"arenadb/pkg/arena"
	"arenadb/pkg/config"
	"arenadb/pkg/hash"
	"arenadb/pkg/repl"
	"arenadb/pkg/trace"

	"github.com/google/uuid"
)

// Listens for SIGINT or SIGTERM and closes the trace logger.
func setupCloseHandler(logger *trace.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("closehandler invoked")
		if logger != nil {
			logger.Close()
		}
		os.Exit(0)
	}()
}

// newSession builds a fresh arena, store, and REPL. Every session owns its
// own arena; the engine is single-owner by contract.
func newSession(capacity int32, traceFile string, replay bool) (*repl.REPL, error) {
	store := hash.NewStore(arena.New(capacity))
	var logger *trace.Logger
	if traceFile != "" {
		if replay {
			tables, err := trace.Recover(store, traceFile)
			if err != nil {
				return nil, err
			}
			for old, fresh := range tables {
				fmt.Printf("recovered table %d as %d\n", old, fresh)
			}
		}
		var err error
		logger, err = trace.NewLogger(traceFile)
		if err != nil {
			return nil, err
		}
		setupCloseHandler(logger)
	}
	return hash.StoreRepl(store, logger, traceFile), nil
}

// Start listening for connections at port `port`. Each connection gets its
// own arena and store.
func startServer(capacity int32, prompt string, port int) {
	handleConn := func(c net.Conn) {
		defer c.Close()
		r, err := newSession(capacity, "", false)
		if err != nil {
			log.Print(err)
			return
		}
		r.Run(uuid.New(), prompt, c, c)
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%v server started listening on localhost:%v\n", config.DBName,
		listener.Addr().(*net.TCPAddr).Port)
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Print(err)
			continue
		}
		go handleConn(conn)
	}
}

// Start the database.
func main() {
	var promptFlag = flag.Bool("c", true, "use prompt?")
	var portFlag = flag.Int("p", 0, "serve sessions over tcp on this port instead of stdin")
	var capacityFlag = flag.Int("capacity", int(config.DefaultArenaCapacity), "arena capacity in bytes")
	var traceFlag = flag.String("trace", "", "journal mutations to this trace file")
	var recoverFlag = flag.Bool("recover", false, "replay the trace file on startup")
	flag.Parse()

	capacity := int32(*capacityFlag)
	prompt := config.GetPrompt(*promptFlag)

	if *portFlag != 0 {
		startServer(capacity, prompt, *portFlag)
		return
	}

	r, err := newSession(capacity, *traceFlag, *recoverFlag)
	if err != nil {
		log.Fatal(err)
	}
	r.Run(uuid.New(), prompt, os.Stdin, os.Stdout)
}
