package config

// Default returns the built-in configuration covering common ecosystems.
// A user config file overrides any of these sections; the tool is usable
// with no config file at all.
func Default() *Config {
	return &Config{
		Exclude: []string{
			"node_modules/**",
			"vendor/**",
			"dist/**",
			"build/**",
			".git/**",
			"__pycache__/**",
			"*.min.js",
			"*.map",
		},
		MaxFileSize: "1MB",
		Signatures: Signatures{
			Frameworks: map[string][]string{
				"react":   {"react", "react-dom"},
				"nextjs":  {"next"},
				"vue":     {"vue", "nuxt"},
				"angular": {"@angular/core"},
				"svelte":  {"svelte"},
				"express": {"express"},
				"fastify": {"fastify"},
				"django":  {"django"},
				"flask":   {"flask"},
				"rails":   {"rails"},
				"gin":     {"github.com/gin-gonic/gin"},
				"echo":    {"github.com/labstack/echo"},
			},
			Auth: map[string][]string{
				"supabase":      {"@supabase/supabase-js", "@supabase/auth-helpers-nextjs"},
				"auth0":         {"auth0", "@auth0/auth0-react"},
				"firebase-auth": {"firebase/auth", "@firebase/auth"},
				"nextauth":      {"next-auth"},
				"passport":      {"passport"},
				"clerk":         {"@clerk/nextjs", "@clerk/clerk-react"},
				"devise":        {"devise"},
			},
			Databases: map[string][]string{
				"postgres": {"pg", "postgres", "github.com/jackc/pgx"},
				"mysql":    {"mysql2", "github.com/go-sql-driver/mysql"},
				"mongodb":  {"mongodb", "mongoose"},
				"sqlite":   {"better-sqlite3", "sqlite3", "modernc.org/sqlite"},
				"prisma":   {"@prisma/client", "prisma"},
				"drizzle":  {"drizzle-orm"},
				"redis":    {"redis", "ioredis", "github.com/redis/go-redis"},
			},
			State: map[string][]string{
				"redux":       {"redux", "@reduxjs/toolkit", "react-redux"},
				"zustand":     {"zustand"},
				"mobx":        {"mobx", "mobx-react"},
				"pinia":       {"pinia"},
				"vuex":        {"vuex"},
				"react-query": {"@tanstack/react-query", "react-query"},
				"recoil":      {"recoil"},
			},
			Styling: map[string][]string{
				"tailwind":          {"tailwindcss"},
				"styled-components": {"styled-components"},
				"emotion":           {"@emotion/react", "@emotion/styled"},
				"sass":              {"sass", "node-sass"},
				"chakra":            {"@chakra-ui/react"},
				"mui":               {"@mui/material"},
			},
		},
		Domains: map[string]DomainRules{
			"authentication": {
				FilePatterns:     []string{`(?i)(auth|login|session|middleware)`},
				FunctionPatterns: []string{`(?i)(signIn|signOut|signUp|login|logout|authenticate|authorize|getSession|verifyToken)`},
				ImportPatterns:   []string{`(?i)(auth|passport|session|jwt|jsonwebtoken|bcrypt)`},
			},
			"components": {
				FilePatterns:     []string{`(?i)(components?|views?|pages?|widgets?)/.*\.(tsx|jsx|vue|svelte)$`, `\.(tsx|jsx|vue|svelte)$`},
				FunctionPatterns: []string{`(?i)(function\s+[A-Z]\w*|const\s+[A-Z]\w*\s*[:=]|render\s*\(|createComponent)`, `export\s+default\s+function`},
				ImportPatterns:   []string{`(?i)(react|vue|svelte|@angular)`},
			},
			"state": {
				FilePatterns:     []string{`(?i)(store|state|reducers?|slices?|atoms?|context)`},
				FunctionPatterns: []string{`(?i)(useState|useReducer|createStore|createSlice|configureStore|defineStore|useContext|createContext)`},
				ImportPatterns:   []string{`(?i)(redux|zustand|mobx|pinia|vuex|recoil|jotai)`},
			},
			"jobs": {
				FilePatterns:     []string{`(?i)(jobs?|workers?|queues?|tasks?|cron|schedul)`},
				FunctionPatterns: []string{`(?i)(enqueue|processJob|perform|schedule|addJob|createWorker|cron\.)`},
				ImportPatterns:   []string{`(?i)(bull|bullmq|celery|sidekiq|agenda|node-cron|machinery)`},
			},
			"storage": {
				FilePatterns:     []string{`(?i)(storage|uploads?|files?|media|assets?)`},
				FunctionPatterns: []string{`(?i)(upload|download|putObject|getObject|createReadStream|writeFile|saveFile)`},
				ImportPatterns:   []string{`(?i)(aws-sdk|@aws-sdk/client-s3|multer|minio|cloudinary|firebase/storage)`},
			},
			"database": {
				FilePatterns:     []string{`(?i)(models?|schemas?|entit|repositor|migrations?|db|database|queries)`},
				FunctionPatterns: []string{`(?i)(findOne|findMany|findAll|query|execute|save\(|insert|createTable|migrate|transaction)`},
				ImportPatterns:   []string{`(?i)(prisma|mongoose|sequelize|typeorm|knex|pg|sqlalchemy|gorm|sqlx)`},
			},
			"errors": {
				FilePatterns:     []string{`(?i)(errors?|exceptions?|handlers?|middleware)`},
				FunctionPatterns: []string{`(?i)(try\s*\{|catch\s*\(|\.catch\(|errorHandler|handleError|captureException|recover\(\)|rescue\b)`},
				ImportPatterns:   []string{`(?i)(sentry|rollbar|bugsnag|winston|pino|zap|logrus)`},
			},
			"testing": {
				FilePatterns:     []string{`(?i)((_|\.)(test|spec)\.|tests?/|spec/|__tests__/)`},
				FunctionPatterns: []string{`(?i)(describe\s*\(|it\s*\(|test\s*\(|expect\s*\(|assert|func Test[A-Z])`},
				ImportPatterns:   []string{`(?i)(jest|vitest|mocha|chai|pytest|testing|testify|supertest|cypress|playwright)`},
			},
			"integration": {
				FilePatterns:     []string{`(?i)(api|clients?|services?|integrations?|webhooks?|external)`},
				FunctionPatterns: []string{`(?i)(fetch\s*\(|axios\.|http\.(Get|Post)|requests\.(get|post)|\.request\(|callApi|apiClient)`},
				ImportPatterns:   []string{`(?i)(axios|got|node-fetch|graphql|grpc|stripe|twilio|sendgrid)`},
			},
			"deployment": {
				FilePatterns:     []string{`(?i)(Dockerfile|docker-compose|\.github/workflows|\.gitlab-ci|deploy|k8s|kubernetes|helm|terraform|Procfile|vercel\.json|netlify\.toml)`},
				FunctionPatterns: []string{`(?i)(FROM\s+\w|EXPOSE\s+\d|kubectl|docker\s+(build|run)|steps:|runs-on:)`},
				ImportPatterns:   []string{`(?i)(image:|registry|container)`},
			},
		},
		Extraction: Extraction{
			MaxExamplesPerDomain: 3,
			MinExampleLines:      5,
			MaxExampleLines:      60,
			PriorityFiles:        []string{"src/App.tsx", "src/index.ts", "src/main.ts", "main.go", "app/page.tsx"},
		},
		Scoring: Scoring{
			ConfidenceThreshold: 0.7,
			Weights: Weights{
				Patterns:      0.4,
				Examples:      0.4,
				Configuration: 0.2,
			},
		},
		Generation: Generation{
			Endpoint:     "http://localhost:11434",
			Model:        "default",
			RequestDelay: "2s",
			Timeout:      "120s",
		},
		Guides: Guides{
			RequiredSections: []string{"Overview", "Patterns", "Examples"},
		},
	}
}
