package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"

	"gousers/internal/pkg/database"
	"gousers/migrations"
)

// Uso: go run ./cmd/migrate [-dsn URL] [up|down|status|version|redo|reset] [args...]
// Sem comando, aplica "up".
func main() {
	log := logrus.New()

	if err := godotenv.Load(); err != nil {
		log.Warn("Arquivo .env não encontrado. Usando apenas o ambiente do sistema.")
	}

	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "string de conexão PostgreSQL (padrão: $DATABASE_URL)")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("goose: defina DATABASE_URL ou -dsn")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	db, err := database.NewPostgresDB(ctx, *dsn, database.DefaultPool())
	cancel()
	if err != nil {
		log.WithError(err).Fatal("goose: falha ao conectar ao DB")
	}
	defer db.Close()

	// As migrations vêm do binário, não do diretório de trabalho.
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		log.WithError(err).Fatal("goose: dialeto não suportado")
	}

	command, args := "up", []string(nil)
	if flag.NArg() > 0 {
		command, args = flag.Arg(0), flag.Args()[1:]
	}

	if err := goose.RunContext(context.Background(), command, db, ".", args...); err != nil {
		log.WithError(err).Fatalf("goose %s", command)
	}

	log.WithField("command", command).Info("goose concluído")
}
