package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/renlang/ren/internal/config"
)

// MOLDIFY: each heart appends its renderable form to an accumulating
// buffer; the orchestrator handles recursion and cycle detection with a
// pointer stack. Mold produces re-loadable text; Form produces friendly
// text (strings unquoted).

type molder struct {
	sb    strings.Builder
	stack []Node
	form  bool
	depth int
}

// Mold renders a cell as loadable text.
func Mold(c *Cell) string {
	m := &molder{}
	m.moldCell(c)
	return m.sb.String()
}

// Form renders for humans: text without quotes, words bare.
func Form(c *Cell) string {
	m := &molder{form: true}
	m.moldCell(c)
	return m.sb.String()
}

func (m *molder) cyclic(n Node) bool {
	for _, seen := range m.stack {
		if seen == n {
			return true
		}
	}
	return false
}

func (m *molder) moldCell(c *Cell) {
	if m.depth > config.MoldRecursionLimit {
		m.sb.WriteString("...")
		return
	}
	m.depth++
	defer func() { m.depth-- }()

	switch c.Lift {
	case LiftAntiform:
		m.moldAntiform(c)
		return
	case LiftQuasi:
		if c.Heart == HeartBlank {
			m.sb.WriteByte('~') // the trash literal
			return
		}
		if c.Heart == HeartError && c.ErrorNode() != nil {
			// lifted errors read as their antiform notation
			fmt.Fprintf(&m.sb, "~%s~", c.ErrorNode().ID)
			return
		}
		m.sb.WriteByte('~')
		inner := *c
		inner.Lift = LiftNormal
		m.moldHeart(&inner)
		m.sb.WriteByte('~')
		return
	}
	for i := uint8(0); i < c.Quotes; i++ {
		m.sb.WriteByte('\'')
	}
	if c.Sigil != SigilNone && c.Heart != HeartWord {
		// non-word sigils decorate the whole spelling: :a/b, m.a:, ^(...)
		switch c.Sigil {
		case SigilGet:
			m.sb.WriteByte(':')
		case SigilMeta:
			m.sb.WriteByte('^')
		case SigilTie:
			m.sb.WriteByte('$')
		case SigilPin:
			m.sb.WriteByte('@')
		}
		m.moldHeart(c)
		if c.Sigil == SigilSet {
			m.sb.WriteByte(':')
		}
		return
	}
	m.moldHeart(c)
}

func (m *molder) moldAntiform(c *Cell) {
	switch {
	case IsTrash(c):
		m.sb.WriteString("~")
	case IsGhost(c):
		m.sb.WriteString("~,~")
	case IsError(c):
		fmt.Fprintf(&m.sb, "~%s~", c.ErrorNode().ID)
	case IsAction(c):
		name := c.DetailsNode().Name
		if name == "" {
			name = "anonymous"
		}
		fmt.Fprintf(&m.sb, "~#[action! %s]~", name)
	default:
		m.sb.WriteByte('~')
		inner := *c
		inner.Lift = LiftNormal
		m.moldHeart(&inner)
		m.sb.WriteByte('~')
	}
}

func (m *molder) moldHeart(c *Cell) {
	switch c.Heart {
	case HeartNothing:
		m.sb.WriteString("#[erased]")
	case HeartBlank:
		m.sb.WriteByte('_')
	case HeartComma:
		m.sb.WriteByte(',')
	case HeartInteger:
		m.sb.WriteString(strconv.FormatInt(c.Num, 10))
	case HeartDecimal:
		s := strconv.FormatFloat(c.Dec, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		m.sb.WriteString(s)
	case HeartChar:
		if m.form {
			m.sb.WriteRune(c.AsChar())
		} else {
			fmt.Fprintf(&m.sb, "#\"%c\"", c.AsChar())
		}
	case HeartText:
		if m.form {
			m.sb.WriteString(c.Strand().String())
		} else {
			m.sb.WriteString(strconv.Quote(c.Strand().String()))
		}
	case HeartBlob:
		m.sb.WriteString("#{")
		for _, b := range c.Strand().Bytes {
			fmt.Fprintf(&m.sb, "%02X", b)
		}
		m.sb.WriteString("}")
	case HeartWord:
		m.moldWord(c)
	case HeartBlock:
		m.moldList(c, "[", "]")
	case HeartGroup:
		m.moldList(c, "(", ")")
	case HeartFence:
		m.moldList(c, "{", "}")
	case HeartPath:
		m.moldSequence(c, "/")
	case HeartTuple:
		m.moldSequence(c, ".")
	case HeartChain:
		m.moldSequence(c, ":")
	case HeartMap:
		m.moldMap(c)
	case HeartFrame:
		name := "frame"
		if d := c.DetailsNode(); d != nil && d.Name != "" {
			name = d.Name
		} else if ph := c.FramePhase(); ph != nil && ph.Name != "" {
			name = ph.Name
		}
		fmt.Fprintf(&m.sb, "#[frame! %s]", name)
	case HeartParameter:
		m.sb.WriteString("#[parameter!]")
	case HeartError:
		if e := c.ErrorNode(); e != nil {
			fmt.Fprintf(&m.sb, "#[error! %s]", e.ID)
		} else {
			m.sb.WriteString("#[error!]")
		}
	case HeartDatatype:
		if sym := c.Symbol(); sym != nil {
			m.sb.WriteString(sym.Text)
		}
		m.sb.WriteByte('!')
	default:
		fmt.Fprintf(&m.sb, "#[%s!]", c.Heart)
	}
}

func (m *molder) moldWord(c *Cell) {
	sym := c.Symbol()
	if sym == nil {
		m.sb.WriteString("#[word!]")
		return
	}
	switch c.Sigil {
	case SigilSet:
		m.sb.WriteString(sym.Text)
		m.sb.WriteByte(':')
	case SigilGet:
		m.sb.WriteByte(':')
		m.sb.WriteString(sym.Text)
	case SigilMeta:
		m.sb.WriteByte('^')
		m.sb.WriteString(sym.Text)
	case SigilTie:
		m.sb.WriteByte('$')
		m.sb.WriteString(sym.Text)
	case SigilPin:
		m.sb.WriteByte('@')
		m.sb.WriteString(sym.Text)
	default:
		m.sb.WriteString(sym.Text)
	}
}

func (m *molder) moldList(c *Cell, open, close string) {
	a := c.Array()
	if a == nil {
		m.sb.WriteString(open + close)
		return
	}
	if m.cyclic(a) {
		m.sb.WriteString(open + "..." + close)
		return
	}
	m.stack = append(m.stack, a)
	defer func() { m.stack = m.stack[:len(m.stack)-1] }()

	m.sb.WriteString(open)
	for i := c.Index; i < a.Used(); i++ {
		if i > c.Index {
			m.sb.WriteByte(' ')
		}
		el := a.At(i)
		m.moldCell(&el)
	}
	m.sb.WriteString(close)
}

func (m *molder) moldSequence(c *Cell, sep string) {
	if c.Flags&CellLeadingBlank != 0 {
		m.sb.WriteString(sep)
	}
	// A molder without a runtime reconstitutes storage forms directly.
	var cells []Cell
	switch n := c.Node.(type) {
	case *Pairing:
		cells = []Cell{n.A, n.B}
	case *Array:
		cells = n.Cells
	case *Strand:
		for _, b := range n.Bytes {
			cells = append(cells, IntCell(int64(b)))
		}
	case *Symbol:
		cells = []Cell{WordCell(n)}
	}
	for i := range cells {
		if i > 0 {
			m.sb.WriteString(sep)
		}
		m.moldCell(&cells[i])
	}
	if c.Flags&CellTrailingBlank != 0 {
		m.sb.WriteString(sep)
	}
}

func (m *molder) moldMap(c *Cell) {
	mp := c.Map()
	if mp == nil {
		m.sb.WriteString("make map! []")
		return
	}
	if m.cyclic(mp) {
		m.sb.WriteString("make map! [...]")
		return
	}
	m.stack = append(m.stack, mp)
	defer func() { m.stack = m.stack[:len(m.stack)-1] }()

	m.sb.WriteString("make map! [")
	first := true
	mp.EachPair(func(k, v *Cell) bool {
		if !first {
			m.sb.WriteByte(' ')
		}
		first = false
		m.moldCell(k)
		m.sb.WriteByte(' ')
		m.moldCell(v)
		return true
	})
	m.sb.WriteString("]")
}
