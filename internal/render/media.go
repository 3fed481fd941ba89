package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/roboco-io/feishu2html/internal/block"
	"github.com/roboco-io/feishu2html/internal/tree"
)

func renderImage(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Image](node)
	if err != nil {
		return err
	}
	d := b.Image
	if d == nil || d.Token == "" {
		return nil
	}
	caption := ""
	if d.Caption != nil {
		caption = d.Caption.Content
	}
	fmt.Fprintf(out, `<figure class="image"%s><img src="%s" alt="%s"`,
		alignStyle(d.Align), escapeAttr(rc.imageSrc(d.Token)), escapeAttr(caption))
	if d.Width > 0 {
		fmt.Fprintf(out, ` width="%d"`, d.Width)
	}
	if d.Height > 0 {
		fmt.Fprintf(out, ` height="%d"`, d.Height)
	}
	out.WriteString(` loading="lazy">`)
	if caption != "" {
		fmt.Fprintf(out, "<figcaption>%s</figcaption>", html.EscapeString(caption))
	}
	out.WriteString("</figure>\n")
	return nil
}

func renderFile(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.File](node)
	if err != nil {
		return err
	}
	d := b.File
	if d == nil || d.Token == "" {
		return nil
	}
	name := d.Name
	if name == "" {
		name = d.Token
	}
	fmt.Fprintf(out, `<div class="file"><a href="%s" download="%s">%s</a></div>`+"\n",
		escapeAttr(rc.Assets.FileHref(d.Token, d.Name)), escapeAttr(name), html.EscapeString(name))
	return nil
}

func renderBoard(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Board](node)
	if err != nil {
		return err
	}
	if b.Board == nil || b.Board.Token == "" {
		return renderUnsupported(out, node, rc)
	}
	fmt.Fprintf(out, `<figure class="board"><img src="%s" alt="board" loading="lazy"></figure>`+"\n",
		escapeAttr(rc.boardSrc(b.Board.Token)))
	return nil
}

func renderIframe(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.Iframe](node)
	if err != nil {
		return err
	}
	if b.Iframe == nil || b.Iframe.Component.URL == "" {
		return renderUnsupported(out, node, rc)
	}
	fmt.Fprintf(out, `<div class="iframe"><iframe src="%s" sandbox="allow-scripts allow-same-origin allow-popups" allowfullscreen></iframe></div>`+"\n",
		escapeAttr(safeURL(b.Iframe.Component.URL)))
	return nil
}

func renderLinkPreview(out *bytes.Buffer, node *tree.Node, rc *Context) error {
	b, err := as[*block.LinkPreview](node)
	if err != nil {
		return err
	}
	if b.LinkPreview == nil || b.LinkPreview.URL == "" {
		return nil
	}
	u := safeURL(b.LinkPreview.URL)
	fmt.Fprintf(out, `<div class="link-preview"><a href="%s">%s</a></div>`+"\n", escapeAttr(u), html.EscapeString(u))
	return nil
}
