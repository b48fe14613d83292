package dashboard

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const trendNote = "**Observação sobre a tendência:** A queda nas vendas nos anos mais recentes " +
	"(a partir de 2017/2018) neste gráfico e nas projeções não representa necessariamente um " +
	"declínio real do mercado. É um comportamento comum em datasets históricos como este, onde " +
	"a coleta de dados para os anos mais recentes pode ser **incompleta ou ter sido descontinuada**. " +
	"Para análises de tendências recentes, seria necessário um dataset mais atualizado."

const aboutNote = "Este dashboard foi desenvolvido por **Wilber Soares** para analisar dados de " +
	"vendas de videogames como trabalho de conclusão de curso do curso de Pós-graduação de " +
	"Ciência de dados aplicado à inteligência de negócios. Ele permite explorar tendências, " +
	"comparar performance de gêneros, plataformas e editoras ao longo dos anos. Dados de vendas " +
	"são apresentados em milhões de unidades e foram pré-processados para garantir a qualidade " +
	"da análise."

// Note is a text block in both its Markdown source and rendered HTML.
type Note struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

// Notes are the static texts shown alongside the charts.
type Notes struct {
	Trend Note `json:"trend"`
	About Note `json:"about"`
}

// NewNote renders md to HTML.
func NewNote(md string) Note {
	// Parsers keep state, so each document gets its own.
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return Note{
		Markdown: md,
		HTML:     string(markdown.ToHTML([]byte(md), p, r)),
	}
}

// DefaultNotes returns the dashboard's trend caveat and about text.
func DefaultNotes() Notes {
	return Notes{
		Trend: NewNote(trendNote),
		About: NewNote(aboutNote),
	}
}
