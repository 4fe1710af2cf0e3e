// Package main seeds the database with the initial admin account and
// the base geographic hierarchy for La Paz.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Masterminds/squirrel"
	"golang.org/x/crypto/bcrypt"

	"mercadito/internal/config"
	"mercadito/internal/core/id"
	"mercadito/internal/storage/postgres"
	"mercadito/pkg/logger"
)

func main() {
	adminEmail := flag.String("admin-email", "admin@mercadito.bo", "correo del administrador inicial")
	adminPassword := flag.String("admin-password", "", "contraseña del administrador inicial")
	flag.Parse()

	if *adminPassword == "" {
		fmt.Println("se requiere -admin-password")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.PGDSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	err = txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		querier := txManager.GetQuerier(ctx)

		exec := func(q squirrel.InsertBuilder) error {
			sql, args, err := q.Suffix("ON CONFLICT DO NOTHING").ToSql()
			if err != nil {
				return err
			}
			_, err = querier.Exec(ctx, sql, args...)
			return err
		}

		// Geography: La Paz with its main municipalities.
		if err := exec(builder.Insert("departamento").
			Columns("id_departamento", "nombre", "visible").
			Values(1, "La Paz", true)); err != nil {
			return fmt.Errorf("seed departamento: %w", err)
		}
		if err := exec(builder.Insert("municipio").
			Columns("id_municipio", "nombre", "id_departamento", "visible").
			Values(1, "Nuestra Señora de La Paz", 1, true).
			Values(2, "El Alto", 1, true)); err != nil {
			return fmt.Errorf("seed municipio: %w", err)
		}
		if err := exec(builder.Insert("localidad").
			Columns("id_localidad", "nombre", "id_municipio", "visible").
			Values(1, "Zona Sur", 1, true).
			Values(2, "Centro", 1, true).
			Values(3, "Ciudad Satélite", 2, true)); err != nil {
			return fmt.Errorf("seed localidad: %w", err)
		}
		if err := exec(builder.Insert("zona").
			Columns("id_zona", "nombre", "id_localidad", "visible").
			Values(1, "Calacoto", 1, true).
			Values(2, "San Miguel", 1, true).
			Values(3, "Casco Viejo", 2, true).
			Values(4, "Plan 561", 3, true)); err != nil {
			return fmt.Errorf("seed zona: %w", err)
		}

		if err := exec(builder.Insert("categoria").
			Columns("nombre", "visible").
			Values("General", true)); err != nil {
			return fmt.Errorf("seed categoria: %w", err)
		}

		// Initial admin account.
		hash, err := bcrypt.GenerateFromPassword([]byte(*adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if err := exec(builder.Insert("usuario").
			Columns("id", "ci", "primer_nombre", "apellido_paterno", "apellido_materno",
				"celular", "correo_electronico", "contrasena", "rol", "visible").
			Values(id.New().String(), "0000000", "Admin", "Mercadito", "Inicial",
				"00000000", *adminEmail, string(hash), "admin", true)); err != nil {
			return fmt.Errorf("seed usuario: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Fatalw("seed failed", "error", err)
	}

	log.Infow("seed completed", "admin", *adminEmail)
}
