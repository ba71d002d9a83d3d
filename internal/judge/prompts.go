package judge

import "text/template"

// FinalAnswerMarker prefixes the verdict the majority prompt asks for.
const FinalAnswerMarker = "✅ Final Answer:"

const majorityPromptTemplate = `
You are an AI judge. Your job is to read three AI answers and output only the most trustworthy final answer to the question — with no explanation.

Instructions:
- Read the question and the 3 AI answers.
- Choose the best and most accurate answer.
- Then return only the final answer in this exact format: ✅ Final Answer: [short conclusive answer]

Do not explain your decision. Do not write paragraphs. Only output one clear, short, and final answer.

Question: "{{.Question}}"

Groq: "{{.Groq}}"
Gemini: "{{.Gemini}}"
Mistral: "{{.Mistral}}"

Again, respond ONLY with: ✅ Final Answer: [short clear verdict]
`

const semanticPromptTemplate = `
You are an AI semantic verifier. Your task is to check whether the following AI answer means the same thing as the final answer.

If the meaning is the same, return only this: ✅ Match
If it is not the same, return only this: ❌ Mismatch

Final Answer: "{{.Final}}"
AI Answer: "{{.Answer}}"

Now reply only with ✅ Match or ❌ Mismatch.
`

var (
	majorityTmpl = template.Must(template.New("majority").Parse(majorityPromptTemplate))
	semanticTmpl = template.Must(template.New("semantic").Parse(semanticPromptTemplate))
)

type majorityData struct {
	Question string
	Groq     string
	Gemini   string
	Mistral  string
}

type semanticData struct {
	Answer string
	Final  string
}
