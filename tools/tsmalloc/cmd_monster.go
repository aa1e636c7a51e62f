package main

import "encoding/json"
import "flag"
import "fmt"
import "io/ioutil"
import "log"
import "math/rand"
import "sort"
import "time"

import "github.com/prataprc/goparsec"
import "github.com/prataprc/monster"
import mcommon "github.com/prataprc/monster/common"

import "github.com/bnclabs/tsmalloc/api"
import "github.com/bnclabs/tsmalloc/malloc"

var monsteropts struct {
	capacity  int64
	allocator string
	n         int
	ncpu      int
	par       int
	seed      int
	bagdir    string
	prodfile  string
}

func parseMonsteropts(args []string) {
	f := flag.NewFlagSet("monster", flag.ExitOnError)

	f.Int64Var(&monsteropts.capacity, "capacity", 1024*1024*1024,
		"heap arena capacity in bytes")
	f.StringVar(&monsteropts.allocator, "allocator", "lock",
		"allocator variant, lock or nolock")
	f.IntVar(&monsteropts.n, "n", 1000,
		"number of op batches to generate and apply")
	f.IntVar(&monsteropts.ncpu, "ncpu", 1,
		"set number cores to use.")
	f.IntVar(&monsteropts.par, "par", 1,
		"no. of concurrent generators")
	f.IntVar(&monsteropts.seed, "seed", 1,
		"random seed")
	f.StringVar(&monsteropts.bagdir, "bagdir", "",
		"bag directory for monster sample data.")
	f.StringVar(&monsteropts.prodfile, "prodfile", "",
		"monster production file generating alloc/free ops")
	f.Parse(args)

	if monsteropts.prodfile == "" {
		log.Fatalf("please provide production file to monster")
	}

	fmt.Printf("seed: %v\n", monsteropts.seed)
	setCPU(monsteropts.ncpu)
}

func doMonster(args []string) {
	parseMonsteropts(args)

	setts := malloc.Defaultsettings()
	setts["allocator"] = monsteropts.allocator
	heap := malloc.NewHeap(monsteropts.capacity, setts)
	ma := malloc.New(heap, setts)

	opch := make(chan [][]interface{}, 1000)
	for i := 0; i < monsteropts.par; i++ {
		fmt.Printf("starting monster routine %v ...\n", i+1)
		go generate(monsteropts.n, monsteropts.prodfile, opch)
	}

	rnd := rand.New(rand.NewSource(int64(monsteropts.seed)))
	stats := make(map[string]int)
	live := make([]api.Pointer, 0, 1024)

	now, count := time.Now(), 0
	for cmds := range opch {
		for _, cmd := range cmds {
			name := cmd[0].(string)
			live = applyop(heap, ma, rnd, live, cmd)
			stats[name] = stats[name] + 1
		}
		count++
		if count%100 == 0 {
			validateblocks(ma.Freeblocks())
		}
		if count >= (monsteropts.par * monsteropts.n) {
			break
		}
	}
	validateblocks(ma.Freeblocks())
	for _, ptr := range live {
		ma.Free(ptr)
	}

	// print statistics
	keys, total := []string{}, 0
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		total += stats[key]
		fmt.Printf("%v : %v\n", key, stats[key])
	}
	fmt.Printf("total : %v in %v\n", total, time.Since(now))
	printinfo(ma)
}

// ops come as ["alloc", size] and ["free"], free picks a random
// live chunk.
func applyop(
	heap *malloc.Heap, ma api.Mallocer, rnd *rand.Rand,
	live []api.Pointer, cmd []interface{}) []api.Pointer {

	switch name := cmd[0].(string); name {
	case "alloc":
		size := int64(cmd[1].(float64))
		ptr := ma.Alloc(size)
		if ptr == api.Null {
			log.Fatalf("allocation failure for %v bytes", size)
		}
		block := heap.Bytes(ptr)
		for i := range block {
			block[i] = 0xab
		}
		live = append(live, ptr)

	case "free":
		if len(live) > 0 {
			k := rnd.Intn(len(live))
			for _, c := range heap.Bytes(live[k]) {
				if c != 0xab {
					log.Fatalf("chunk corrupted, got %v", c)
				}
			}
			ma.Free(live[k])
			live[k] = live[len(live)-1]
			live = live[:len(live)-1]
		}

	default:
		log.Fatalf("unknown command %v", name)
	}
	return live
}

//--------
// monster
//--------

func generate(repeat int, prodfile string, opch chan<- [][]interface{}) {
	text, err := ioutil.ReadFile(prodfile)
	if err != nil {
		log.Fatal(err)
	}
	root := compile(parsec.NewScanner(text)).(mcommon.Scope)
	seed, bagdir := uint64(monsteropts.seed), monsteropts.bagdir
	scope := monster.BuildContext(root, seed, bagdir, prodfile)
	nterms := scope["_nonterminals"].(mcommon.NTForms)
	for i := 0; i < repeat; i++ {
		scope = scope.RebuildContext()
		val := evaluate("root", scope, nterms["s"])
		var arr [][]interface{}
		if err := json.Unmarshal([]byte(val.(string)), &arr); err != nil {
			log.Fatal(err)
		}
		opch <- arr
	}
}

func compile(s parsec.Scanner) parsec.ParsecNode {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("%v at %v", r, s.GetCursor())
		}
	}()
	root, _ := monster.Y(s)
	return root
}

func evaluate(
	name string, scope mcommon.Scope, forms []*mcommon.Form) interface{} {

	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("%v", r)
		}
	}()
	return monster.EvalForms(name, scope, forms)
}
