// instanced maintains a small persisted registry mapping MAC addresses to
// instance records (name plus IPv4/IPv6 addresses), fed by dnsmasq lease
// events and manual commands, and renders a hosts resolution table and
// nftables anti-spoofing rules and address sets from it.
//
// It is meant to be wired into dnsmasq via --dhcp-script and
// --script-on-renewal, which invoke it with a lease action as the first
// argument.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"grimm.is/instanced/cmd"
	"grimm.is/instanced/internal/store"
)

// exitNotDirty is the distinguished "nothing to do" status of process.
const exitNotDirty = 10

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add", "old":
		// Lease creation and renewal, straight from dnsmasq.
		exit(cmd.RunLease(os.Args[1], os.Args[2:]))

	case "init":
		initFlags := flag.NewFlagSet("init", flag.ExitOnError)
		initFlags.Parse(os.Args[2:])
		if initFlags.NArg() != 2 {
			fmt.Fprintf(os.Stderr, "Usage: %s init <interface> <name>\n", os.Args[0])
			os.Exit(1)
		}
		exit(cmd.RunInit(initFlags.Arg(0), initFlags.Arg(1)))

	case "rename":
		renameFlags := flag.NewFlagSet("rename", flag.ExitOnError)
		renameFlags.Parse(os.Args[2:])
		if renameFlags.NArg() != 2 {
			fmt.Fprintf(os.Stderr, "Usage: %s rename <mac> <name>\n", os.Args[0])
			os.Exit(1)
		}
		exit(cmd.RunRename(renameFlags.Arg(0), renameFlags.Arg(1)))

	case "remove":
		removeFlags := flag.NewFlagSet("remove", flag.ExitOnError)
		removeFlags.Parse(os.Args[2:])
		if removeFlags.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "Usage: %s remove <mac>\n", os.Args[0])
			os.Exit(1)
		}
		exit(cmd.RunRemove(removeFlags.Arg(0)))

	case "process":
		processFlags := flag.NewFlagSet("process", flag.ExitOnError)
		force := processFlags.Bool("force", false, "Process even if no update is pending")
		processFlags.BoolVar(force, "f", false, "Process even if no update is pending (short)")
		processFlags.Parse(os.Args[2:])

		err := cmd.RunProcess(*force)
		if errors.Is(err, store.ErrNotDirty) {
			os.Exit(exitNotDirty)
		}
		exit(err)

	case "show":
		exit(cmd.RunShow())

	case "help", "--help", "-h":
		printUsage()

	default:
		// Some other dnsmasq dhcp-script action. Notably "del" on lease
		// expiry lands here: the registry is append-mostly, records only
		// leave via the explicit remove verb. Ignoring unknown actions
		// also keeps newer dnsmasq versions harmless.
		os.Exit(0)
	}
}

func exit(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	os.Exit(0)
}

func printUsage() {
	fmt.Printf(`instanced - instance registry for dnsmasq leases

Usage: %s <command> [arguments]

Lease events (invoked by dnsmasq as dhcp-script):
  add <mac> <ip> [hostname]    Record a new lease
  old <mac> <ip> [hostname]    Record a lease renewal
  <other actions>              Ignored (lease expiry never deletes records)

Commands:
  init <interface> <name>      Seed a record for a local interface
  rename <mac> <name>          Rename a record (evicts other holders)
  remove <mac>                 Delete a record
  process [-f|--force]         Regenerate hosts and nftables artifacts;
                               exits 10 when there is nothing to do
  show                         Print the registry document
  help                         Show this help

Environment:
  INSTANCES_BASE_PATH          Registry path prefix (default /var/lib/misc/instances)
  INSTANCES_BASE_ID            Optional registry instance id suffix
  INSTANCES_HOSTS_DOMAIN       Domain suffix for generated names (default .instance.internal)
  INSTANCES_ADDRESS_SETS       Comma-separated address set groups (default host)
  INSTANCES_CONFIG             Optional HCL configuration file
  INSTANCES_LOG_LEVEL          debug, info, warn, or error (default info)
`, os.Args[0])
}
