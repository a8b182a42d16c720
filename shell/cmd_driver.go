package shell

import (
	"fmt"
	"strconv"

	"github.com/sis-kernel/sisk/driver"
)

// RegisterGPIO binds `gpio {set|clear|read} <pin>` to g.
func RegisterGPIO(s *Shell, g *driver.GPIOController) {
	s.Register("gpio", "GPIO", func(args []string) (Output, error) {
		if len(args) < 2 {
			return Output{}, fmt.Errorf("usage: gpio {set|clear|read} <pin>")
		}
		pin, err := strconv.Atoi(args[1])
		if err != nil {
			return Output{}, fmt.Errorf("invalid pin %q: %w", args[1], err)
		}
		switch args[0] {
		case "set":
			if err := g.SetPin(pin); err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("pin %d set", pin)}, nil
		case "clear":
			if err := g.ClearPin(pin); err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("pin %d cleared", pin)}, nil
		case "read":
			level, err := g.ReadPin(pin)
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("pin %d = %v", pin, level), JSON: map[string]any{"pin": pin, "level": level}}, nil
		default:
			return Output{}, fmt.Errorf("unknown gpio subcommand %q", args[0])
		}
	})
}

// RegisterI2C binds the `i2c` command family of section 6.4 to b.
func RegisterI2C(s *Shell, b *driver.I2CBus) {
	s.Register("i2c", "I2C", func(args []string) (Output, error) {
		if len(args) == 0 {
			return Output{}, fmt.Errorf("usage: i2c {scan|read|write|readreg|writereg|devices}")
		}
		switch args[0] {
		case "scan":
			addrs, err := b.Scan()
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("%d device(s)", len(addrs)), JSON: addrs}, nil
		case "devices":
			return Output{JSON: b.Devices()}, nil
		case "read":
			addr, count, err := parseAddrCount(args[1:])
			if err != nil {
				return Output{}, err
			}
			data, err := b.Read(addr, count)
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("% x", data), JSON: data}, nil
		case "write":
			if len(args) < 3 {
				return Output{}, fmt.Errorf("usage: i2c write <addr> <hex bytes...>")
			}
			addr, err := parseAddr(args[1])
			if err != nil {
				return Output{}, err
			}
			data, err := parseHexBytes(args[2:])
			if err != nil {
				return Output{}, err
			}
			if err := b.Write(addr, data); err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("wrote %d byte(s)", len(data))}, nil
		case "readreg":
			if len(args) < 3 {
				return Output{}, fmt.Errorf("usage: i2c readreg <addr> <reg>")
			}
			addr, err := parseAddr(args[1])
			if err != nil {
				return Output{}, err
			}
			reg, err := parseAddr(args[2])
			if err != nil {
				return Output{}, err
			}
			val, err := b.ReadReg(addr, reg)
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("0x%02x", val), JSON: val}, nil
		case "writereg":
			if len(args) < 4 {
				return Output{}, fmt.Errorf("usage: i2c writereg <addr> <reg> <value>")
			}
			addr, err := parseAddr(args[1])
			if err != nil {
				return Output{}, err
			}
			reg, err := parseAddr(args[2])
			if err != nil {
				return Output{}, err
			}
			val, err := parseAddr(args[3])
			if err != nil {
				return Output{}, err
			}
			if err := b.WriteReg(addr, reg, val); err != nil {
				return Output{}, err
			}
			return Output{Text: "ok"}, nil
		default:
			return Output{}, fmt.Errorf("unknown i2c subcommand %q", args[0])
		}
	})
}

// RegisterSPI binds `spi {config|transfer|write|read}` to b.
func RegisterSPI(s *Shell, b *driver.SPIBus) {
	s.Register("spi", "SPI", func(args []string) (Output, error) {
		if len(args) == 0 {
			return Output{}, fmt.Errorf("usage: spi {config|transfer|write|read}")
		}
		switch args[0] {
		case "config":
			if len(args) < 3 {
				return Output{}, fmt.Errorf("usage: spi config <mode> <speed_hz>")
			}
			mode, err := strconv.Atoi(args[1])
			if err != nil {
				return Output{}, fmt.Errorf("invalid mode %q: %w", args[1], err)
			}
			speed, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return Output{}, fmt.Errorf("invalid speed %q: %w", args[2], err)
			}
			if err := b.Config(driver.SPIMode(mode), uint32(speed)); err != nil {
				return Output{}, err
			}
			return Output{Text: "configured"}, nil
		case "transfer":
			data, err := parseHexBytes(args[1:])
			if err != nil {
				return Output{}, err
			}
			rx, err := b.Transfer(data)
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("% x", rx), JSON: rx}, nil
		case "write":
			data, err := parseHexBytes(args[1:])
			if err != nil {
				return Output{}, err
			}
			if err := b.Write(data); err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("wrote %d byte(s)", len(data))}, nil
		case "read":
			if len(args) < 2 {
				return Output{}, fmt.Errorf("usage: spi read <count>")
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return Output{}, fmt.Errorf("invalid count %q: %w", args[1], err)
			}
			data, err := b.Read(count)
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("% x", data), JSON: data}, nil
		default:
			return Output{}, fmt.Errorf("unknown spi subcommand %q", args[0])
		}
	})
}

// RegisterPWM binds `pwm {enable|disable|freq|duty}` to p.
func RegisterPWM(s *Shell, p *driver.PWMController) {
	s.Register("pwm", "PWM", func(args []string) (Output, error) {
		if len(args) < 3 {
			return Output{}, fmt.Errorf("usage: pwm {enable|disable|freq|duty} <ctrl> <ch> [value]")
		}
		ctrl, err := parseAddr(args[1])
		if err != nil {
			return Output{}, fmt.Errorf("invalid controller %q: %w", args[1], err)
		}
		ch, err := parseAddr(args[2])
		if err != nil {
			return Output{}, fmt.Errorf("invalid channel %q: %w", args[2], err)
		}

		switch args[0] {
		case "enable":
			if err := p.Enable(ctrl, ch); err != nil {
				return Output{}, err
			}
			return Output{Text: "enabled"}, nil
		case "disable":
			if err := p.Disable(ctrl, ch); err != nil {
				return Output{}, err
			}
			return Output{Text: "disabled"}, nil
		case "freq":
			if len(args) < 4 {
				return Output{}, fmt.Errorf("usage: pwm freq <ctrl> <ch> <hz>")
			}
			hz, err := strconv.ParseUint(args[3], 10, 32)
			if err != nil {
				return Output{}, fmt.Errorf("invalid frequency %q: %w", args[3], err)
			}
			actual, err := p.SetFrequency(ctrl, ch, uint32(hz))
			if err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("frequency set to %d Hz", actual)}, nil
		case "duty":
			if len(args) < 4 {
				return Output{}, fmt.Errorf("usage: pwm duty <ctrl> <ch> <percent>")
			}
			pct, err := strconv.Atoi(args[3])
			if err != nil {
				return Output{}, fmt.Errorf("invalid duty percent %q: %w", args[3], err)
			}
			if err := p.SetDutyPercent(ctrl, ch, uint8(pct)); err != nil {
				return Output{}, err
			}
			return Output{Text: fmt.Sprintf("duty set to %d%%", pct)}, nil
		default:
			return Output{}, fmt.Errorf("unknown pwm subcommand %q", args[0])
		}
	})
}

func parseAddr(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint8(n), nil
}

func parseAddrCount(args []string) (addr uint8, count int, err error) {
	if len(args) < 2 {
		return 0, 0, fmt.Errorf("usage: <cmd> <addr> <count>")
	}
	addr, err = parseAddr(args[0])
	if err != nil {
		return 0, 0, err
	}
	count, err = strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid count %q: %w", args[1], err)
	}
	return addr, count, nil
}

func parseHexBytes(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expected one or more hex byte values")
	}
	out := make([]byte, len(args))
	for i, a := range args {
		n, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q: %w", a, err)
		}
		out[i] = byte(n)
	}
	return out, nil
}
