package ui

const (
	paneBorder     = 2
	paneTitle      = 1
	resultsHeader  = 2
	maxErrorLines  = 4
	minPaneHeight  = 3
	transformedMin = 4
)

type paneSizes struct {
	leftWidth         int
	rightWidth        int
	bodyHeight        int
	editorHeight      int
	transformedHeight int
	errorLines        int
	resultsHeight     int
}

// computeSizes splits the body between the editor column and the results
// column using the persisted split ratio.
func (m Model) computeSizes() paneSizes {
	var sz paneSizes
	sz.bodyHeight = max(m.height-chromeHeight, minPaneHeight+paneBorder)

	split := m.settings.Layout.Split
	if split <= 0 {
		split = 0.5
	}
	sz.leftWidth = int(float64(m.width) * split)
	if sz.leftWidth < minPaneWidth {
		sz.leftWidth = min(minPaneWidth, m.width)
	}
	sz.rightWidth = m.width - sz.leftWidth
	if sz.rightWidth < minPaneWidth && m.width >= 2*minPaneWidth {
		sz.rightWidth = minPaneWidth
		sz.leftWidth = m.width - sz.rightWidth
	}

	if m.state.Err != nil {
		sz.errorLines = min(len(m.state.Err.Lines()), maxErrorLines)
	}
	column := sz.bodyHeight
	if m.showTransformed {
		sz.transformedHeight = max(column/2, transformedMin)
		column -= sz.transformedHeight
	}
	sz.editorHeight = max(column-paneBorder-paneTitle-sz.errorLines, 1)
	sz.resultsHeight = max(sz.bodyHeight-paneBorder-resultsHeader, 1)
	return sz
}

func (m *Model) applyLayout() {
	if m.ready {
		sz := m.computeSizes()
		m.editor.SetWidth(max(sz.leftWidth-paneBorder, 1))
		m.editor.SetHeight(sz.editorHeight)
		m.results.Width = max(sz.rightWidth-paneBorder, 1)
		m.results.Height = sz.resultsHeight
		m.help.Width = m.width
	}
	m.refreshResults()
}
