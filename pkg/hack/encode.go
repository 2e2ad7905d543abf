package hack

import "fmt"

// EncodeSymbolic renders a single already-lowered instruction back to its
// canonical Hack assembly surface syntax, used by cmd/hackasm when neither
// --binary nor TO_BINARY is given to emit human-readable .asm instead of the
// binary .hack form.
func EncodeSymbolic(instruction Instruction) (string, error) {
	switch inst := instruction.(type) {
	case AInstruction:
		return fmt.Sprintf("@%s", inst.LocName), nil
	case CInstruction:
		switch {
		case inst.Dest != "" && inst.Jump != "":
			return fmt.Sprintf("%s=%s;%s", inst.Dest, inst.Comp, inst.Jump), nil
		case inst.Dest != "":
			return fmt.Sprintf("%s=%s", inst.Dest, inst.Comp), nil
		case inst.Jump != "":
			return fmt.Sprintf("%s;%s", inst.Comp, inst.Jump), nil
		default:
			return inst.Comp, nil
		}
	case Helper:
		switch inst.Kind {
		case HelperLabel:
			return fmt.Sprintf("(%s)", inst.Text), nil
		default:
			return fmt.Sprintf("// %s", inst.Text), nil
		}
	default:
		return "", fmt.Errorf("unrecognized instruction %T", instruction)
	}
}
