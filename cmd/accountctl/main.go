// Command accountctl is the operator-side administrative path: it
// lists accounts and flips ban/role flags directly on the store. The
// coordinator only honors these flags (rejecting logins, keeping the
// banned mark in the roster); it never mutates them itself.
//
// Badger holds an exclusive directory lock, so accountctl runs while
// the coordinator is stopped.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"messenger-lab/domain"
	"messenger-lab/repositories"
)

func main() {
	dbPath := flag.String("db", "./database", "Path to the badger DB directory")
	ban := flag.String("ban", "", "Username to ban")
	unban := flag.String("unban", "", "Username to unban")
	promote := flag.String("promote", "", "Username to promote to admin")
	demote := flag.String("demote", "", "Username to demote to plain user")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	accounts := repositories.NewAccountRepository(db)

	switch {
	case *ban != "":
		patchAccount(accounts, *ban, domain.AccountPatch{Banned: lo.ToPtr(true)})
		color.Red.Printf("Banned %s\n", *ban)
	case *unban != "":
		patchAccount(accounts, *unban, domain.AccountPatch{Banned: lo.ToPtr(false)})
		color.Green.Printf("Unbanned %s\n", *unban)
	case *promote != "":
		patchAccount(accounts, *promote, domain.AccountPatch{Role: lo.ToPtr(domain.RoleAdmin)})
		color.Yellow.Printf("Promoted %s to admin\n", *promote)
	case *demote != "":
		patchAccount(accounts, *demote, domain.AccountPatch{Role: lo.ToPtr(domain.RoleUser)})
		color.Yellow.Printf("Demoted %s to user\n", *demote)
	default:
		listAccounts(accounts)
	}
}

func patchAccount(accounts *repositories.AccountRepository, username string, patch domain.AccountPatch) {
	account, err := accounts.FindByUsername(username)
	if err != nil {
		log.Fatalf("Account %q: %v", username, err)
	}
	if err := accounts.UpdateFields(account.ID, patch); err != nil {
		log.Fatalf("Update of %q failed: %v", username, err)
	}
}

func listAccounts(accounts *repositories.AccountRepository) {
	all, err := accounts.ListAll()
	if err != nil {
		log.Fatal("Listing accounts failed: ", err)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Username", "Display Name", "Role", "Status", "Created"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, account := range all {
		status := color.Green.Sprint("active")
		if account.Banned {
			status = color.Red.Sprint("banned")
		}
		table.Append([]string{
			account.ID,
			account.Username,
			account.DisplayName,
			string(account.Role),
			status,
			account.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	fmt.Printf("%d account(s)\n", len(all))
	table.Render()
}
