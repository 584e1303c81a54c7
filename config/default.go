package config

// DefaultConfigYAML 内置默认配置，外部配置文件与环境变量可逐项覆盖
var DefaultConfigYAML = []byte(`server:
  port: ":8080"
  mode: "debug"

database:
  driver: "sqlite"
  path: "data/expensebook.db"
  host: "127.0.0.1"
  port: "3306"
  username: "root"
  password: ""
  dbname: "expensebook"
  charset: "utf8mb4"
`)
