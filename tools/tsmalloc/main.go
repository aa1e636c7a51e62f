package main

import "fmt"
import "os"
import "runtime"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch cmd := os.Args[1]; cmd {
	case "stress":
		doStress(os.Args[2:])
	case "monster":
		doMonster(os.Args[2:])
	default:
		fmt.Printf("unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: tsmalloc <command> [options]")
	fmt.Println("commands:")
	fmt.Println("  stress   randomized alloc/free cycles across goroutines")
	fmt.Println("  monster  grammar driven alloc/free workload")
}

func setCPU(ncpu int) {
	fmt.Printf("setting number of cpus to %v\n", ncpu)
	runtime.GOMAXPROCS(ncpu)
}
