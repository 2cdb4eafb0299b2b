package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/hysenctl/internal/logging"
	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/protocol"
	"github.com/muurk/hysenctl/internal/ui"
)

var decodeFormat string

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&decodeFormat, "format", "detailed", "Status output format (detailed, json, yaml, fields)")
}

// decodeCmd explains a captured envelope offline
var decodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a captured envelope",
	Long: `Check and explain one envelope captured from a bridge log.

The length byte and CRC are verified first. Status read replies are decoded
with the selected profile (default heating) and shown like 'status'. No
device is contacted.

Spaces, colons and a 0x prefix in the hex input are ignored.`,
	Example: `  # Write echo
  hysenctl decode "08 00 01 06 00 00 01 01 49 9a"

  # Fan coil status reply from a debug log
  hysenctl decode --profile fancoil "30 00 01 03 20 ..."`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func runDecode(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())

	switch decodeFormat {
	case "detailed", "json", "yaml", "fields":
	default:
		return fmt.Errorf("unknown format %q (use detailed, json, yaml or fields)", decodeFormat)
	}

	kind := profile.KindHeating
	if cmd.Flags().Changed("profile") {
		k, err := profile.ParseKind(profileName)
		if err != nil {
			return err
		}
		kind = k
	}

	raw, err := parseHex(args[0])
	if err != nil {
		return err
	}
	logging.LogRawBytes("Decode input", raw)

	payload, err := protocol.Unframe(raw)
	if err != nil {
		printer.PrintError("Invalid envelope", err, []string{
			"Capture the whole envelope, from the length byte to both CRC bytes",
			"Check that nothing was dropped from the middle of the capture",
		})
		return err
	}

	details := []ui.Detail{
		{Key: "Length", Value: fmt.Sprintf("%d (payload %d)", raw[0], len(payload))},
		{Key: "CRC", Value: fmt.Sprintf("0x%02x%02x", raw[int(raw[0])+1], raw[raw[0]])},
	}
	var result *ui.Result
	if trailing := len(raw) - int(raw[0]) - protocol.TrailerSize; trailing > 0 {
		// The bridge reads only the announced length; anything after it
		// belongs to a later envelope or is line noise.
		result = ui.NewWarningResult("Envelope OK, trailing bytes ignored", details...)
		result.AddDetail("Trailing", fmt.Sprintf("% x", raw[len(raw)-trailing:]))
	} else {
		result = ui.NewSuccessResult("Envelope OK", details...)
	}
	if len(payload) < 2 {
		printer.PrintResult(result.AddDetail("Payload", fmt.Sprintf("% x", payload)))
		return nil
	}

	op := payload[1]
	result.AddDetail("Slave", fmt.Sprintf("0x%02x", payload[0]))
	switch {
	case op&0x80 != 0 && len(payload) >= 3:
		result.AddDetail("Opcode", fmt.Sprintf("0x%02x (error reply to 0x%02x)", op, op&0x7F))
		result.AddDetail("Exception", fmt.Sprintf("%d %s", payload[2], protocol.ExceptionName(payload[2])))
	case op == protocol.OpReadBlock && len(payload) == 6:
		result.AddDetail("Opcode", "0x03 read request")
		result.AddDetail("Address", fmt.Sprintf("0x%04x", uint16(payload[2])<<8|uint16(payload[3])))
		result.AddDetail("Words", fmt.Sprintf("%d", uint16(payload[4])<<8|uint16(payload[5])))
	case op == protocol.OpReadBlock:
		result.AddDetail("Opcode", "0x03 read reply")
		result.AddDetail("Byte count", fmt.Sprintf("%d (received %d)", payload[2], len(payload)-3))
		printer.PrintResult(result)
		printer.Newline()
		return printDecodedStatus(printer, kind, payload[3:])
	case op == protocol.OpWriteWord && len(payload) >= 6:
		result.AddDetail("Opcode", "0x06 write word")
		result.AddDetail("Address", fmt.Sprintf("0x%04x", uint16(payload[2])<<8|uint16(payload[3])))
		result.AddDetail("Value", fmt.Sprintf("%02x %02x", payload[4], payload[5]))
	case op == protocol.OpWriteBlock && len(payload) >= 6:
		result.AddDetail("Opcode", "0x10 write block")
		result.AddDetail("Address", fmt.Sprintf("0x%04x", uint16(payload[2])<<8|uint16(payload[3])))
		result.AddDetail("Words", fmt.Sprintf("%d", uint16(payload[4])<<8|uint16(payload[5])))
		if len(payload) > 7 {
			result.AddDetail("Data", fmt.Sprintf("% x", payload[7:]))
		} else {
			result.AddDetail("Data", "none (echo)")
		}
	default:
		result.AddDetail("Opcode", fmt.Sprintf("0x%02x", op))
		result.AddDetail("Data", fmt.Sprintf("% x", payload[2:]))
	}

	printer.PrintResult(result)
	return nil
}

func printDecodedStatus(printer *ui.Printer, kind profile.Kind, block []byte) error {
	if decodeFormat == "fields" {
		return printFields(printer, kind, block)
	}

	var (
		state interface{}
		err   error
	)
	if kind == profile.KindFanCoil {
		state, err = profile.FanCoil.Decode(block)
	} else {
		state, err = profile.Heating.Decode(block)
	}
	if err != nil {
		printer.PrintError("Status decode failed", err, []string{
			"Check --profile; heating replies carry 46 bytes and fan coil replies 32",
		})
		return err
	}

	return printState(printer, decodeFormat, state)
}

// printFields lists every register field of the layout with its offset
func printFields(printer *ui.Printer, kind profile.Kind, block []byte) error {
	p, err := profile.ForKind(kind)
	if err != nil {
		return err
	}
	layout := p.Layout()
	values, err := layout.Decode(block)
	if err != nil {
		printer.PrintError("Status decode failed", err, []string{
			"Check --profile; heating replies carry 46 bytes and fan coil replies 32",
		})
		return err
	}

	names := sortedKeys(values)
	sort.SliceStable(names, func(i, j int) bool {
		fi, _ := layout.Field(names[i])
		fj, _ := layout.Field(names[j])
		return fi.Offset < fj.Offset
	})

	var b strings.Builder
	fmt.Fprintf(&b, "%-6s  %-20s  %s\n", "OFFSET", "FIELD", "VALUE")
	for _, name := range names {
		f, _ := layout.Field(name)
		fmt.Fprintf(&b, "%-6d  %-20s  %v\n", f.Offset, name, values[name])
	}
	printer.Print(b.String())
	return nil
}

// parseHex accepts "0a0b", "0a 0b", "0a:0b" and "0x0a0b"
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}
