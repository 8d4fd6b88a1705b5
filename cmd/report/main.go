// Command report prints the sales dashboard figures to the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/database"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/repository"
)

func main() {
	config.LoadDotEnv()
	var (
		date     = flag.String("date", time.Now().Format("2006-01-02"), "day to report (YYYY-MM-DD)")
		weekly   = flag.Bool("weekly", true, "also print the seven days ending on -date")
		currency = flag.String("currency", envOr("CURRENCY", "XOF"), "currency label")
		dbUser   = flag.String("db-user", os.Getenv("DB_USER"), "database user")
		dbPass   = flag.String("db-pass", os.Getenv("DB_PASS"), "database password")
		dbHost   = flag.String("db-host", envOr("DB_HOST", "127.0.0.1"), "database host")
		dbPort   = flag.String("db-port", envOr("DB_PORT", "3306"), "database port")
		dbName   = flag.String("db-name", os.Getenv("DB_NAME"), "database name")
	)
	flag.Parse()

	day, err := time.ParseInLocation("2006-01-02", *date, time.Local)
	if err != nil {
		log.Fatalf("invalid -date %q: %v", *date, err)
	}

	db, err := database.Open(*dbUser, *dbPass, *dbHost, *dbPort, *dbName)
	if err != nil {
		log.Fatalf("failed to connect to MySQL: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	stats := repository.NewStatsRepo(db)

	daily, err := stats.Daily(ctx, day)
	if err != nil {
		log.Fatalf("daily stats: %v", err)
	}
	fmt.Printf("Sales report for %s (%s)\n", day.Format("Mon 02 Jan 2006"), *currency)
	if err := renderDaily(daily); err != nil {
		log.Fatal(err)
	}

	if !*weekly {
		return
	}
	week, err := stats.Weekly(ctx, day)
	if err != nil {
		log.Fatalf("weekly stats: %v", err)
	}
	fmt.Println()
	if err := renderWeek(week); err != nil {
		log.Fatal(err)
	}
}

func renderDaily(s model.DailyStats) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Sales", "Expenses", "Profit", "Orders")
	if err := table.Append([]string{
		s.TotalSales.StringFixed(2),
		s.TotalExpenses.StringFixed(2),
		s.Profit.StringFixed(2),
		strconv.Itoa(s.OrderCount),
	}); err != nil {
		return err
	}
	return table.Render()
}

func renderWeek(days []model.DayStats) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Day", "Date", "Sales", "Orders")
	for _, d := range days {
		if err := table.Append([]string{d.Day, d.Date.Format("2006-01-02"), d.Sales.StringFixed(2), strconv.Itoa(d.Orders)}); err != nil {
			return err
		}
	}
	return table.Render()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
