package main

import (
	"context"
	"log"
	"os"

	"github.com/edulane/gurukul/core"
	"github.com/edulane/gurukul/core/account"
	"github.com/edulane/gurukul/storage/database/mongo"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := mongodb.Open(conf)
	errAndDie(err)
	defer db.Client().Disconnect(context.Background())
	errAndDie(mongodb.EnsureIndexes(context.Background(), db))

	// start CLI
	cli := commandLine{
		acctSvc: account.NewService(
			mongodb.NewAccountRepository(db),
			mongodb.NewProfileRepository(db),
			nil, /* mailSvc */
			conf,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
